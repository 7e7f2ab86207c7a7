package usecase

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/skinlens/backend/internal/domain"
)

const (
	scanStateName    = "scans"
	scanStateVersion = 3

	// MaxScanHistory is the number of scans kept, newest first
	MaxScanHistory = 10
)

// ScanState is the scan history plus reminder settings
type ScanState struct {
	Latest                 *domain.ScanResult  `json:"latest"`
	History                []domain.ScanResult `json:"history"`
	ReminderEnabled        bool                `json:"reminderEnabled"`
	ReminderNotificationID *string             `json:"reminderNotificationId"`
}

func cloneScans(s ScanState) ScanState {
	out := ScanState{
		History:         make([]domain.ScanResult, len(s.History)),
		ReminderEnabled: s.ReminderEnabled,
	}
	for i, scan := range s.History {
		out.History[i] = cloneScan(scan)
	}
	if s.Latest != nil {
		latest := cloneScan(*s.Latest)
		out.Latest = &latest
	}
	if s.ReminderNotificationID != nil {
		id := *s.ReminderNotificationID
		out.ReminderNotificationID = &id
	}
	return out
}

// cloneScan copies a scan record including its slices and pointer fields
func cloneScan(s domain.ScanResult) domain.ScanResult {
	s.SkincareAdvice = slices.Clone(s.SkincareAdvice)
	s.ConfidenceScores = slices.Clone(s.ConfidenceScores)
	s.Concerns = slices.Clone(s.Concerns)
	s.RecommendedProducts = slices.Clone(s.RecommendedProducts)
	s.AvoidTags = slices.Clone(s.AvoidTags)
	if s.FaceDetected != nil {
		v := *s.FaceDetected
		s.FaceDetected = &v
	}
	if s.FaceCount != nil {
		v := *s.FaceCount
		s.FaceCount = &v
	}
	return s
}

// migrateScans upgrades older payloads: v1 stored only latest, v2 added history,
// v3 added reminder fields. Missing fields default to empty.
func migrateScans(raw json.RawMessage, _ int) (ScanState, error) {
	var base struct {
		Latest                 *domain.ScanResult  `json:"latest"`
		History                []domain.ScanResult `json:"history"`
		ReminderEnabled        *bool               `json:"reminderEnabled"`
		ReminderNotificationID *string             `json:"reminderNotificationId"`
	}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &base); err != nil {
			return ScanState{}, err
		}
	}

	state := ScanState{
		Latest:                 base.Latest,
		History:                base.History,
		ReminderNotificationID: base.ReminderNotificationID,
	}
	if base.ReminderEnabled != nil {
		state.ReminderEnabled = *base.ReminderEnabled
	}
	if state.History == nil {
		state.History = []domain.ScanResult{}
		if state.Latest != nil {
			state.History = append(state.History, *state.Latest)
		}
	}
	return cloneScans(state), nil
}

// ScanStore keeps the recent scan history
type ScanStore struct {
	c   *stateContainer[ScanState]
	now func() time.Time
}

// NewScanStore creates an empty scan store
func NewScanStore(opts StateOptions) *ScanStore {
	return &ScanStore{
		c:   newStateContainer(scanStateName, scanStateVersion, ScanState{History: []domain.ScanResult{}}, cloneScans, migrateScans, opts),
		now: time.Now,
	}
}

// Hydrate restores scan history from the state store
func (s *ScanStore) Hydrate(ctx context.Context) error {
	return s.c.hydrate(ctx)
}

// AddScan records a scan as the latest one and returns it with its assigned id.
// A zero ScannedAt is set to the current time.
func (s *ScanStore) AddScan(scan domain.ScanResult) domain.ScanResult {
	scan = cloneScan(scan)
	scan.ID = uuid.NewString()
	if scan.ScannedAt.IsZero() {
		scan.ScannedAt = s.now().UTC()
	}

	s.c.update(func(state ScanState) (ScanState, bool) {
		history := append([]domain.ScanResult{cloneScan(scan)}, state.History...)
		if len(history) > MaxScanHistory {
			history = history[:MaxScanHistory]
		}
		latest := cloneScan(scan)
		state.Latest = &latest
		state.History = history
		return state, true
	})
	return scan
}

// RemoveScan deletes a scan. When it was the latest, the newest remaining scan
// takes its place.
func (s *ScanStore) RemoveScan(id string) error {
	found := false
	s.c.update(func(state ScanState) (ScanState, bool) {
		n := len(state.History)
		state.History = slices.DeleteFunc(state.History, func(x domain.ScanResult) bool { return x.ID == id })
		latestRemoved := state.Latest != nil && state.Latest.ID == id
		if len(state.History) == n && !latestRemoved {
			return state, false
		}
		found = true
		if latestRemoved {
			state.Latest = nil
			if len(state.History) > 0 {
				latest := state.History[0]
				state.Latest = &latest
			}
		}
		return state, true
	})
	if !found {
		return domain.ErrScanNotFound
	}
	return nil
}

// ClearAll drops every scan
func (s *ScanStore) ClearAll() {
	s.c.update(func(state ScanState) (ScanState, bool) {
		state.Latest = nil
		state.History = []domain.ScanResult{}
		return state, true
	})
}

// SetReminder stores the scan reminder preference
func (s *ScanStore) SetReminder(enabled bool, notificationID *string) {
	s.c.update(func(state ScanState) (ScanState, bool) {
		state.ReminderEnabled = enabled
		state.ReminderNotificationID = notificationID
		return state, true
	})
}

// Latest returns the most recent scan, or nil when there is none
func (s *ScanStore) Latest() *domain.ScanResult {
	return s.c.snapshot().Latest
}

// History returns the stored scans, newest first
func (s *ScanStore) History() []domain.ScanResult {
	return s.c.snapshot().History
}

// Get returns the scan with the given id
func (s *ScanStore) Get(id string) (domain.ScanResult, error) {
	for _, scan := range s.History() {
		if scan.ID == id {
			return scan, nil
		}
	}
	return domain.ScanResult{}, domain.ErrScanNotFound
}

// Snapshot returns a copy of the whole scan state
func (s *ScanStore) Snapshot() ScanState {
	return s.c.snapshot()
}

// Subscribe calls fn after every scan state change
func (s *ScanStore) Subscribe(fn func(ScanState)) (unsubscribe func()) {
	return s.c.subscribe(fn)
}

// CheckFace enforces the single-face rule. A nil faceCount means detection was
// unavailable and the scan proceeds, unless the analyzer itself reported that no
// face was found.
func CheckFace(faceDetected *bool, faceCount *int) error {
	if faceCount == nil {
		if faceDetected != nil && !*faceDetected {
			return domain.ErrNoFaceDetected
		}
		return nil
	}
	switch n := *faceCount; {
	case n == 0:
		return domain.ErrNoFaceDetected
	case n > 1:
		return domain.ErrMultipleFaces
	case n < 0:
		return domain.ErrInvalidRequest
	}
	return nil
}

// BuildExportPayload assembles the portable scan history snapshot
func BuildExportPayload(state ScanState, now time.Time) domain.ExportPayload {
	return domain.ExportPayload{
		ExportedAt: now.UTC(),
		Count:      len(state.History),
		Latest:     state.Latest,
		History:    state.History,
	}
}
