// Package filters implements the order filtering engine: typed filter
// criteria, the active filter set with its persistence contract, predicate
// compilation and remote query building.
package filters

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the filter criterion type.
type Kind string

const (
	KindStatus          Kind = "status"
	KindTransportStatus Kind = "transportStatus"
	KindServiceType     Kind = "serviceType"
	KindSettlement      Kind = "settlement"
	KindTransport       Kind = "transport"
	KindStore           Kind = "store"
	KindDateRange       Kind = "dateRange"
)

// DateField names the order date a dateRange criterion applies to. Carried as
// a structured field rather than being sniffed out of the display label.
type DateField string

const (
	DateFieldInstallation DateField = "installationDate"
	DateFieldTransport    DateField = "transportDate"
)

// DateRange bounds an inclusive day interval. A nil To with a non-nil From
// means a single-day range.
type DateRange struct {
	From      *time.Time
	To        *time.Time
	AppliesTo DateField
}

// Criterion is one active filter entry. Criteria are immutable once created;
// replacement is delete plus insert.
type Criterion struct {
	ID    string
	Kind  Kind
	Label string

	// Value, by Kind. Exactly one of these carries meaning.
	Enum    string    // status, transportStatus, serviceType
	Flag    bool      // settlement, transport
	StoreID int64     // store
	Range   DateRange // dateRange
}

// NewEnum builds a status, transportStatus or serviceType criterion.
func NewEnum(kind Kind, value, label string) Criterion {
	return Criterion{ID: uuid.NewString(), Kind: kind, Label: label, Enum: value}
}

// NewFlag builds a settlement or transport criterion.
func NewFlag(kind Kind, value bool, label string) Criterion {
	return Criterion{ID: uuid.NewString(), Kind: kind, Label: label, Flag: value}
}

// NewStore builds a store criterion.
func NewStore(storeID int64, label string) Criterion {
	return Criterion{ID: uuid.NewString(), Kind: KindStore, Label: label, StoreID: storeID}
}

// NewDateRange builds a dateRange criterion. From and To are truncated to day
// precision.
func NewDateRange(appliesTo DateField, from, to *time.Time, label string) Criterion {
	return Criterion{
		ID:    uuid.NewString(),
		Kind:  KindDateRange,
		Label: label,
		Range: DateRange{From: truncateDay(from), To: truncateDay(to), AppliesTo: appliesTo},
	}
}

// singleValued reports whether at most one criterion of this kind may be
// active. dateRange is special-cased per AppliesTo, see Set.Add.
func (k Kind) singleValued() bool {
	switch k {
	case KindSettlement, KindTransport, KindStore, KindDateRange:
		return true
	default:
		return false
	}
}

// replaceKey identifies the slot a criterion occupies under the uniqueness
// policy: single-valued kinds replace by kind, dateRange by kind plus the
// date field it applies to.
func (c Criterion) replaceKey() string {
	if c.Kind == KindDateRange {
		return string(c.Kind) + ":" + string(c.Range.AppliesTo)
	}
	return string(c.Kind)
}

// valueKey canonicalises the criterion value for duplicate detection within
// the multi-valued kinds.
func (c Criterion) valueKey() string {
	switch c.Kind {
	case KindStatus, KindTransportStatus, KindServiceType:
		return c.Enum
	case KindSettlement, KindTransport:
		return strconv.FormatBool(c.Flag)
	case KindStore:
		return strconv.FormatInt(c.StoreID, 10)
	case KindDateRange:
		return string(c.Range.AppliesTo) + ":" + formatDay(c.Range.From) + ".." + formatDay(c.Range.To)
	default:
		return ""
	}
}

const dayLayout = "2006-01-02"

type criterionEnvelope struct {
	ID    string          `json:"id"`
	Kind  Kind            `json:"kind"`
	Label string          `json:"label"`
	Value json.RawMessage `json:"value"`
}

type dateRangeValue struct {
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	AppliesTo DateField `json:"appliesTo"`
}

// MarshalJSON encodes the criterion in the persisted wire shape, with dates
// as ISO-8601 day strings.
func (c Criterion) MarshalJSON() ([]byte, error) {
	var value any
	switch c.Kind {
	case KindStatus, KindTransportStatus, KindServiceType:
		value = c.Enum
	case KindSettlement, KindTransport:
		value = c.Flag
	case KindStore:
		value = c.StoreID
	case KindDateRange:
		value = dateRangeValue{
			From:      formatDay(c.Range.From),
			To:        formatDay(c.Range.To),
			AppliesTo: c.Range.AppliesTo,
		}
	default:
		return nil, fmt.Errorf("filters: unknown kind %q", c.Kind)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(criterionEnvelope{ID: c.ID, Kind: c.Kind, Label: c.Label, Value: raw})
}

// UnmarshalJSON rehydrates a persisted criterion, restoring date values from
// their ISO-8601 strings.
func (c *Criterion) UnmarshalJSON(data []byte) error {
	var env criterionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	out := Criterion{ID: env.ID, Kind: env.Kind, Label: env.Label}
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	switch env.Kind {
	case KindStatus, KindTransportStatus, KindServiceType:
		if err := json.Unmarshal(env.Value, &out.Enum); err != nil {
			return fmt.Errorf("filters: %s value: %w", env.Kind, err)
		}
	case KindSettlement, KindTransport:
		if err := json.Unmarshal(env.Value, &out.Flag); err != nil {
			return fmt.Errorf("filters: %s value: %w", env.Kind, err)
		}
	case KindStore:
		if err := json.Unmarshal(env.Value, &out.StoreID); err != nil {
			return fmt.Errorf("filters: store value: %w", err)
		}
	case KindDateRange:
		var v dateRangeValue
		if err := json.Unmarshal(env.Value, &v); err != nil {
			return fmt.Errorf("filters: dateRange value: %w", err)
		}
		from, err := parseDay(v.From)
		if err != nil {
			return fmt.Errorf("filters: dateRange from: %w", err)
		}
		to, err := parseDay(v.To)
		if err != nil {
			return fmt.Errorf("filters: dateRange to: %w", err)
		}
		if v.AppliesTo != DateFieldInstallation && v.AppliesTo != DateFieldTransport {
			return fmt.Errorf("filters: dateRange appliesTo %q", v.AppliesTo)
		}
		out.Range = DateRange{From: from, To: to, AppliesTo: v.AppliesTo}
	default:
		return fmt.Errorf("filters: unknown kind %q", env.Kind)
	}
	*c = out
	return nil
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dayLayout)
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(dayLayout, s); err == nil {
		return &t, nil
	}
	// Older persisted entries carried full timestamps.
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	day := t.UTC().Truncate(24 * time.Hour)
	return &day, nil
}

func truncateDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &day
}
