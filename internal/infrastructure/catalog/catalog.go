package catalog

import (
	_ "embed"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/skinlens/backend/internal/domain"
)

//go:embed products.yaml
var defaultCatalogYAML []byte

type catalogFile struct {
	IngredientHelp map[string]string `yaml:"ingredient_help"`
	Products       []domain.Product  `yaml:"products"`
}

// Store is the static in-memory product table. It is never mutated after load.
type Store struct {
	products []domain.Product
	byID     map[string]int
	help     map[string]string
}

// LoadDefault loads the catalog bundled with the binary
func LoadDefault() (*Store, error) {
	return Parse(defaultCatalogYAML)
}

// MustLoadDefault is LoadDefault for program start-up and tests
func MustLoadDefault() *Store {
	s, err := LoadDefault()
	if err != nil {
		panic(err)
	}
	return s
}

// Parse decodes and validates a YAML catalog document
func Parse(data []byte) (*Store, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	return New(file.Products, file.IngredientHelp)
}

// New builds a store from already-decoded products, enforcing product invariants
// and id uniqueness.
func New(products []domain.Product, help map[string]string) (*Store, error) {
	validate := validator.New()

	byID := make(map[string]int, len(products))
	for i, p := range products {
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("%w: product %q: %v", domain.ErrInvalidCatalog, p.ID, err)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %q", domain.ErrInvalidCatalog, p.ID)
		}
		byID[p.ID] = i
	}

	if help == nil {
		help = map[string]string{}
	}

	return &Store{
		products: append([]domain.Product(nil), products...),
		byID:     byID,
		help:     help,
	}, nil
}

// Products returns the catalog in its original order
func (s *Store) Products() []domain.Product {
	return s.products
}

// Product looks up a single product by id
func (s *Store) Product(id string) (domain.Product, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return s.products[i], true
}

// IngredientHelp returns the help text for an ingredient tag
func (s *Store) IngredientHelp(tag string) (string, bool) {
	text, ok := s.help[tag]
	return text, ok
}

// Len returns the number of products in the catalog
func (s *Store) Len() int {
	return len(s.products)
}
