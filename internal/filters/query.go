package filters

import (
	"net/url"
	"strconv"
)

// QueryOptions carries the coarse filter state mapped onto the order-listing
// endpoint. Zero values are the "all" sentinels and produce no parameter.
type QueryOptions struct {
	SearchTerm string
	Status     string
	StoreID    int64
	Criteria   []Criterion
}

// BuildURL appends the query parameters derived from the options to base.
// Every dateRange criterion contributes its from/to bounds for the date field
// it applies to; the server filters coarsely and the compiled predicate does
// the exact narrowing afterwards. When nothing applies, base is returned
// unchanged.
func BuildURL(base string, opts QueryOptions) string {
	params := url.Values{}

	if opts.SearchTerm != "" {
		params.Set("search", opts.SearchTerm)
	}
	if opts.Status != "" && opts.Status != "all" {
		params.Set("status", opts.Status)
	}
	if opts.StoreID > 0 {
		params.Set("store", strconv.FormatInt(opts.StoreID, 10))
	}

	for _, c := range opts.Criteria {
		if c.Kind != KindDateRange {
			continue
		}
		var prefix string
		switch c.Range.AppliesTo {
		case DateFieldInstallation:
			prefix = "installationDate"
		case DateFieldTransport:
			prefix = "transportDate"
		default:
			continue
		}
		if c.Range.From != nil {
			params.Add(prefix+"From", formatDay(c.Range.From))
		}
		if c.Range.To != nil {
			params.Add(prefix+"To", formatDay(c.Range.To))
		}
	}

	if len(params) == 0 {
		return base
	}
	return base + "?" + params.Encode()
}
