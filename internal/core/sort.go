package core

import (
	"sort"
	"strings"

	"github.com/jmylchreest/toasty/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByCreated SortField = "created"
	SortByApp     SortField = "app"
	SortByVariant SortField = "variant"
	SortByTitle   SortField = "title"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField
	Order SortOrder
}

// DefaultSortOptions returns arrival order, oldest first, which is the
// registry's own order.
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortByCreated,
		Order: SortAsc,
	}
}

// Sort sorts toasts in place. Ties keep their arrival order.
func Sort(items []model.Item, opts SortOptions) {
	if len(items) == 0 {
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if opts.Order == SortDesc {
			a, b = b, a
		}

		switch opts.Field {
		case SortByApp:
			return strings.ToLower(a.AppName) < strings.ToLower(b.AppName)
		case SortByVariant:
			return VariantRank(a.Variant) < VariantRank(b.Variant)
		case SortByTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}

// ParseSortField parses a sort field string. Unknown names sort by creation.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "app", "appname", "a":
		return SortByApp
	case "variant", "severity", "v":
		return SortByVariant
	case "title", "t":
		return SortByTitle
	default:
		return SortByCreated
	}
}

// ParseSortOrder parses a sort order string. Unknown names sort ascending.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descending", "d":
		return SortDesc
	default:
		return SortAsc
	}
}
