package invoice

import (
	"sort"
	"strings"
)

// Sort orders accepted by the list endpoint.
const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortAmountHigh = "amount_high"
	SortAmountLow  = "amount_low"
)

// ListQuery are the list-endpoint filters. Zero values mean "all".
type ListQuery struct {
	Search string
	Kind   Kind
	Status Status
	SortBy string
	Page   int
	Limit  int
}

// FilterSort applies search, kind and status predicates over an in-memory
// list, then sorts. Search is a case-insensitive substring match against
// customer name or invoice number. The input slice is not modified.
func FilterSort(list []Invoice, q ListQuery) []Invoice {
	out := make([]Invoice, 0, len(list))
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	for _, inv := range list {
		if q.Kind != "" && inv.Kind != q.Kind {
			continue
		}
		if q.Status != "" && inv.Status != q.Status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(inv.Customer.Name), needle) &&
			!strings.Contains(strings.ToLower(inv.Number), needle) {
			continue
		}
		out = append(out, inv)
	}

	switch q.SortBy {
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	case SortAmountHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	case SortAmountLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Total.LessThan(out[j].Total) })
	default: // newest
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out
}

// Paginate returns the requested page of list. Page is 1-based; a zero or
// negative limit returns the whole list.
func Paginate(list []Invoice, page, limit int) []Invoice {
	if limit <= 0 {
		return list
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(list) {
		return []Invoice{}
	}
	end := start + limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}
