package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skinlens/backend/internal/domain"
	"github.com/skinlens/backend/internal/usecase"
)

const serviceVersion = "1.0.0"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog         domain.Catalog
	recommendations *usecase.RecommendationService
	scans           *usecase.ScanService
	scanStore       *usecase.ScanStore
	routine         *usecase.RoutineStore
	products        *usecase.ProductsStore
	logger          *zap.Logger
	now             func() time.Time
}

// Dependencies groups what the handler needs from the usecase layer
type Dependencies struct {
	Catalog         domain.Catalog
	Recommendations *usecase.RecommendationService
	Scans           *usecase.ScanService
	ScanStore       *usecase.ScanStore
	Routine         *usecase.RoutineStore
	Products        *usecase.ProductsStore
	Logger          *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(deps Dependencies) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		catalog:         deps.Catalog,
		recommendations: deps.Recommendations,
		scans:           deps.Scans,
		scanStore:       deps.ScanStore,
		routine:         deps.Routine,
		products:        deps.Products,
		logger:          logger,
		now:             time.Now,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "skinlens-backend",
		"version":  serviceVersion,
		"products": len(h.catalog.Products()),
		"analyzer": h.scans.AnalyzerEnabled(),
	})
}

// ListProducts ranks the catalog against a scan.
// The scan is the one named by ?scan=, or the latest one.
func (h *Handler) ListProducts(c *gin.Context) {
	var filters domain.RecommendFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		h.respondError(c, errors.Join(domain.ErrInvalidRequest, err))
		return
	}

	scan, err := h.scanFor(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	list, err := h.recommendations.Recommend(c.Request.Context(), scan, filters, domain.SortKey(c.Query("sort")))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(list),
		"scanId":   scanID(scan),
		"products": list,
	})
}

// GetProduct returns a product and its match against the latest scan
func (h *Handler) GetProduct(c *gin.Context) {
	scan, err := h.scanFor(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	id := c.Param("id")
	product, match, err := h.recommendations.ProductMatch(c.Request.Context(), scan, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := gin.H{
		"product":      product,
		"matchPercent": 0,
		"why":          []string{},
		"warnings":     []string{},
		"favorite":     h.products.IsFavorite(id),
	}
	if match != nil {
		resp["matchPercent"] = match.MatchPercent
		resp["why"] = match.Why
		resp["warnings"] = match.Warnings
		resp["ingredientWhy"] = match.IngredientWhy
	}
	c.JSON(http.StatusOK, resp)
}

// GetIngredient returns the help text for an ingredient tag
func (h *Handler) GetIngredient(c *gin.Context) {
	tag := c.Param("tag")
	help, ok := h.catalog.IngredientHelp(tag)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "ingredient not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag, "help": help})
}

// SubmitScan stores a scan produced on the device
func (h *Handler) SubmitScan(c *gin.Context) {
	var scan domain.ScanResult
	if err := c.ShouldBindJSON(&scan); err != nil {
		h.respondError(c, errors.Join(domain.ErrInvalidRequest, err))
		return
	}

	stored, err := h.scans.Submit(scan)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// AnalyzeScan sends an image to the configured analyzer and stores the result
func (h *Handler) AnalyzeScan(c *gin.Context) {
	var req domain.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, errors.Join(domain.ErrInvalidRequest, err))
		return
	}

	stored, err := h.scans.Analyze(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// ListScans returns the scan history, newest first
func (h *Handler) ListScans(c *gin.Context) {
	history := h.scanStore.History()
	c.JSON(http.StatusOK, gin.H{"count": len(history), "scans": history})
}

// LatestScan returns the most recent scan
func (h *Handler) LatestScan(c *gin.Context) {
	latest := h.scanStore.Latest()
	if latest == nil {
		h.respondError(c, domain.ErrScanNotFound)
		return
	}
	c.JSON(http.StatusOK, latest)
}

// LatestLevels returns the severity rows of the latest scan
func (h *Handler) LatestLevels(c *gin.Context) {
	latest := h.scanStore.Latest()
	if latest == nil {
		h.respondError(c, domain.ErrScanNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"scanId":      latest.ID,
		"levels":      usecase.BuildSeverityProfile(*latest),
		"topConcerns": usecase.TopConcerns(latest.Concerns, 3),
	})
}

// DeleteScan removes one scan from the history
func (h *Handler) DeleteScan(c *gin.Context) {
	if err := h.scanStore.RemoveScan(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearScans removes every scan
func (h *Handler) ClearScans(c *gin.Context) {
	h.scanStore.ClearAll()
	c.Status(http.StatusNoContent)
}

type reminderRequest struct {
	Enabled        *bool   `json:"enabled" binding:"required"`
	NotificationID *string `json:"notificationId"`
}

// SetReminder stores the rescan reminder settings
func (h *Handler) SetReminder(c *gin.Context) {
	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, errors.Join(domain.ErrInvalidRequest, err))
		return
	}

	h.scanStore.SetReminder(*req.Enabled, req.NotificationID)
	state := h.scanStore.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"reminderEnabled":        state.ReminderEnabled,
		"reminderNotificationId": state.ReminderNotificationID,
	})
}

// GetRoutine returns both routine slots joined with catalog products
func (h *Handler) GetRoutine(c *gin.Context) {
	state := h.routine.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"am": usecase.ResolveRoutine(state.AM, h.catalog),
		"pm": usecase.ResolveRoutine(state.PM, h.catalog),
	})
}

// AddToRoutine assigns a product to a routine slot. A missing step defaults
// to the label of the product's category.
func (h *Handler) AddToRoutine(c *gin.Context) {
	slot, err := domain.ParseRoutineSlot(c.Param("slot"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	var entry domain.RoutineEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		h.respondError(c, errors.Join(domain.ErrInvalidRequest, err))
		return
	}

	product, ok := h.catalog.Product(entry.ProductID)
	if !ok {
		h.respondError(c, domain.ErrProductNotFound)
		return
	}
	if entry.Step == "" {
		entry.Step = product.Category.Step()
	}

	h.routine.AddToRoutine(slot, entry)
	h.GetRoutine(c)
}

// RemoveFromRoutine drops a product from a routine slot
func (h *Handler) RemoveFromRoutine(c *gin.Context) {
	slot, err := domain.ParseRoutineSlot(c.Param("slot"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.routine.RemoveFromRoutine(slot, c.Param("productId"))
	h.GetRoutine(c)
}

// ClearRoutine empties both slots
func (h *Handler) ClearRoutine(c *gin.Context) {
	h.routine.ClearRoutine()
	c.Status(http.StatusNoContent)
}

// GetCompare returns the products selected for comparison
func (h *Handler) GetCompare(c *gin.Context) {
	state := h.products.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"ids":      state.Compare,
		"products": usecase.ResolveProducts(state.Compare, h.catalog),
	})
}

// AddCompare selects a product for comparison. A full selection answers 409
// with {ok:false, reason}.
func (h *Handler) AddCompare(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.catalog.Product(id); !ok {
		h.respondError(c, domain.ErrProductNotFound)
		return
	}

	if err := h.products.AddCompare(id); err != nil {
		if errors.Is(err, domain.ErrCompareCapacity) {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "reason": err.Error()})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "ids": h.products.Snapshot().Compare})
}

// RemoveCompare deselects a product
func (h *Handler) RemoveCompare(c *gin.Context) {
	h.products.RemoveCompare(c.Param("id"))
	h.GetCompare(c)
}

// ClearCompare empties the comparison selection
func (h *Handler) ClearCompare(c *gin.Context) {
	h.products.ClearCompare()
	c.Status(http.StatusNoContent)
}

// GetFavorites returns favorite products, most recently added first
func (h *Handler) GetFavorites(c *gin.Context) {
	state := h.products.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"ids":      state.Favorites,
		"products": usecase.ResolveProducts(state.Favorites, h.catalog),
	})
}

// ToggleFavorite flips a product's favorite flag
func (h *Handler) ToggleFavorite(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.catalog.Product(id); !ok {
		h.respondError(c, domain.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "favorite": h.products.ToggleFavorite(id)})
}

// Export returns the scan history as a downloadable JSON document
func (h *Handler) Export(c *gin.Context) {
	payload := usecase.BuildExportPayload(h.scanStore.Snapshot(), h.now())
	filename := "skinlens-export-" + payload.ExportedAt.Format("20060102-150405") + ".json"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(http.StatusOK, payload)
}

// scanFor resolves ?scan= against the history, defaulting to the latest scan.
// A nil scan means there is no scan yet.
func (h *Handler) scanFor(c *gin.Context) (*domain.ScanResult, error) {
	id := c.Query("scan")
	if id == "" {
		return h.scanStore.Latest(), nil
	}
	scan, err := h.scanStore.Get(id)
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

func scanID(scan *domain.ScanResult) string {
	if scan == nil {
		return ""
	}
	return scan.ID
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrScanNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, domain.ErrCompareCapacity):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidSlot):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrNoFaceDetected):
		status = http.StatusUnprocessableEntity
		message = domain.ErrNoFaceDetected.Error()
	case errors.Is(err, domain.ErrMultipleFaces):
		status = http.StatusUnprocessableEntity
		message = domain.ErrMultipleFaces.Error()
	case errors.Is(err, domain.ErrAnalyzerFailure):
		status = http.StatusBadGateway
		message = "skin analysis service error"
	case errors.Is(err, domain.ErrAnalyzerDisabled), errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
		message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	c.JSON(status, gin.H{"error": message})
}
