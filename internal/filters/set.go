package filters

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/belpol-ops/belpol-ops/internal/shared"
)

// Storage persists the serialized criteria blob per user.
type Storage interface {
	Load(ctx context.Context, userID int64) ([]byte, error)
	Save(ctx context.Context, userID int64, data []byte) error
	Clear(ctx context.Context, userID int64) error
}

// DefaultSource serves the per-user default filter record. Implementations
// return shared.ErrNotFound when no record exists.
type DefaultSource interface {
	GetDefault(ctx context.Context, userID int64) ([]Criterion, error)
}

// Set is the active filter set for one user. All persistence is best-effort:
// storage failures are logged and swallowed, never surfaced to the caller.
type Set struct {
	logger   *slog.Logger
	storage  Storage
	defaults DefaultSource
	userID   int64
	criteria []Criterion
}

// NewSet constructs an empty filter set bound to a user. defaults may be nil
// when no server-side default record is available.
func NewSet(logger *slog.Logger, storage Storage, defaults DefaultSource, userID int64) *Set {
	return &Set{logger: logger, storage: storage, defaults: defaults, userID: userID}
}

// Load initialises the set. The persisted blob is the live state and wins
// whenever it exists, so mutations survive across requests; the server-side
// default filter record only seeds a fresh session with no blob. A blob that
// fails to parse is cleared and the set starts empty. Load never fails.
func (s *Set) Load(ctx context.Context) []Criterion {
	data, err := s.storage.Load(ctx, s.userID)
	if err == nil {
		var criteria []Criterion
		if err := json.Unmarshal(data, &criteria); err != nil {
			s.log(ctx, "parse filter blob", err)
			if err := s.storage.Clear(ctx, s.userID); err != nil {
				s.log(ctx, "clear corrupt filter blob", err)
			}
			s.criteria = nil
			return s.Active()
		}
		s.criteria = dedupe(criteria)
		return s.Active()
	}
	if !errors.Is(err, shared.ErrNotFound) {
		s.log(ctx, "load filter blob", err)
	}

	if s.defaults != nil {
		criteria, err := s.defaults.GetDefault(ctx, s.userID)
		if err == nil {
			s.criteria = dedupe(criteria)
			return s.Active()
		}
		if !errors.Is(err, shared.ErrNotFound) {
			s.log(ctx, "load default filter", err)
		}
	}

	s.criteria = nil
	return s.Active()
}

// Add applies the uniqueness policy and persists the result. Single-valued
// kinds replace the existing entry, multi-valued kinds reject duplicate
// values. Returns the resulting active set.
func (s *Set) Add(ctx context.Context, c Criterion) []Criterion {
	if c.Kind.singleValued() {
		key := c.replaceKey()
		kept := s.criteria[:0]
		for _, existing := range s.criteria {
			if existing.replaceKey() != key {
				kept = append(kept, existing)
			}
		}
		s.criteria = append(kept, c)
		s.persist(ctx)
		return s.Active()
	}

	for _, existing := range s.criteria {
		if existing.Kind == c.Kind && existing.valueKey() == c.valueKey() {
			return s.Active()
		}
	}
	s.criteria = append(s.criteria, c)
	s.persist(ctx)
	return s.Active()
}

// Remove deletes a criterion by id. Removing an absent id is a no-op.
func (s *Set) Remove(ctx context.Context, id string) []Criterion {
	kept := s.criteria[:0]
	removed := false
	for _, existing := range s.criteria {
		if existing.ID == id {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	s.criteria = kept
	if removed {
		s.persist(ctx)
	}
	return s.Active()
}

// Clear empties the set. It persists an empty blob instead of deleting the
// key, otherwise the default record would resurface on the next load.
func (s *Set) Clear(ctx context.Context) {
	s.criteria = []Criterion{}
	s.persist(ctx)
}

// Active returns a copy of the criteria in insertion order.
func (s *Set) Active() []Criterion {
	out := make([]Criterion, len(s.criteria))
	copy(out, s.criteria)
	return out
}

func (s *Set) persist(ctx context.Context) {
	data, err := json.Marshal(s.criteria)
	if err != nil {
		s.log(ctx, "serialize filter set", err)
		return
	}
	if err := s.storage.Save(ctx, s.userID, data); err != nil {
		s.log(ctx, "save filter blob", err)
	}
}

func (s *Set) log(ctx context.Context, msg string, err error) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, slog.Int64("user_id", s.userID), slog.Any("error", err))
	}
}

// dedupe enforces the single-value-per-kind invariant on loaded data,
// last-write-wins. Persisted sets may predate the multi-value change for
// status and transportStatus.
func dedupe(criteria []Criterion) []Criterion {
	lastSlot := make(map[string]int)
	seenValue := make(map[string]struct{})
	out := make([]Criterion, 0, len(criteria))
	for _, c := range criteria {
		if c.Kind.singleValued() {
			if idx, ok := lastSlot[c.replaceKey()]; ok {
				out[idx] = c
				continue
			}
			lastSlot[c.replaceKey()] = len(out)
			out = append(out, c)
			continue
		}
		vk := string(c.Kind) + "=" + c.valueKey()
		if _, dup := seenValue[vk]; dup {
			continue
		}
		seenValue[vk] = struct{}{}
		out = append(out, c)
	}
	return out
}
