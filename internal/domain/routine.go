package domain

import "strings"

// RoutineSlot is the time of day a routine runs
type RoutineSlot string

const (
	SlotAM RoutineSlot = "AM"
	SlotPM RoutineSlot = "PM"
)

// ParseRoutineSlot accepts "am"/"pm" in any case
func ParseRoutineSlot(s string) (RoutineSlot, error) {
	switch RoutineSlot(strings.ToUpper(strings.TrimSpace(s))) {
	case SlotAM:
		return SlotAM, nil
	case SlotPM:
		return SlotPM, nil
	}
	return "", ErrInvalidSlot
}

// RoutineEntry assigns a product to a step inside one routine slot
type RoutineEntry struct {
	ProductID string `json:"productId" binding:"required"`
	Step      string `json:"step"`
}

// ResolvedRoutineEntry is a routine entry joined with its catalog product
type ResolvedRoutineEntry struct {
	RoutineEntry
	Product Product `json:"product"`
}
