package filters

import "time"

// Subject is the projection of an order the compiled predicate evaluates.
// Orders expose it so the engine stays independent of the order model.
type Subject struct {
	InstallationStatus string
	TransportStatus    string
	ServiceType        string
	WillBeSettled      bool
	WithTransport      bool
	StoreID            int64
	InstallationDate   *time.Time
	TransportDate      *time.Time
}

// Predicate decides whether an order matches the active filter set.
type Predicate func(Subject) bool

// Compile turns a criteria set into a single predicate. Criteria of the same
// kind combine with OR, distinct kinds combine with AND. An empty set accepts
// everything.
func Compile(criteria []Criterion) Predicate {
	if len(criteria) == 0 {
		return func(Subject) bool { return true }
	}

	groups := make(map[Kind][]Criterion)
	order := make([]Kind, 0, len(criteria))
	for _, c := range criteria {
		if _, seen := groups[c.Kind]; !seen {
			order = append(order, c.Kind)
		}
		groups[c.Kind] = append(groups[c.Kind], c)
	}

	preds := make([]Predicate, 0, len(order))
	for _, kind := range order {
		preds = append(preds, compileGroup(kind, groups[kind]))
	}

	return func(s Subject) bool {
		for _, p := range preds {
			if !p(s) {
				return false
			}
		}
		return true
	}
}

func compileGroup(kind Kind, group []Criterion) Predicate {
	if kind == KindDateRange {
		// AND across all dateRange criteria, also across date fields. An
		// installation range plus a transport range both have to hold.
		return func(s Subject) bool {
			for _, c := range group {
				if !matchDateRange(c.Range, s) {
					return false
				}
			}
			return true
		}
	}

	return func(s Subject) bool {
		for _, c := range group {
			if matchSingle(c, s) {
				return true
			}
		}
		return false
	}
}

func matchSingle(c Criterion, s Subject) bool {
	switch c.Kind {
	case KindStatus:
		return s.InstallationStatus == c.Enum
	case KindTransportStatus:
		return s.TransportStatus == c.Enum
	case KindServiceType:
		return s.ServiceType == c.Enum
	case KindSettlement:
		return s.WillBeSettled == c.Flag
	case KindTransport:
		return s.WithTransport == c.Flag
	case KindStore:
		return s.StoreID == c.StoreID
	default:
		return false
	}
}

// matchDateRange checks the relevant order date against the inclusive day
// bounds. Orders without a usable date for the field are excluded, not
// defaulted.
func matchDateRange(r DateRange, s Subject) bool {
	var raw *time.Time
	switch r.AppliesTo {
	case DateFieldInstallation:
		raw = s.InstallationDate
	case DateFieldTransport:
		raw = s.TransportDate
	default:
		return false
	}
	if raw == nil || raw.IsZero() {
		return false
	}
	day := time.Date(raw.Year(), raw.Month(), raw.Day(), 0, 0, 0, 0, time.UTC)

	if r.From != nil {
		if day.Before(*r.From) {
			return false
		}
		if r.To == nil {
			// Single-day range: same-day equality.
			return day.Equal(*r.From)
		}
	}
	if r.To != nil && day.After(*r.To) {
		return false
	}
	return true
}
