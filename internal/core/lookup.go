package core

import (
	"slices"
	"strings"

	"github.com/jmylchreest/toasty/internal/model"
)

// LookupByID finds a toast by its id. A unique id prefix also matches.
// Returns nil if nothing or more than one toast matches.
func LookupByID(items []model.Item, id string) *model.Item {
	if id == "" {
		return nil
	}

	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}

	var match *model.Item
	for i := range items {
		if strings.HasPrefix(items[i].ID, id) {
			if match != nil {
				return nil
			}
			match = &items[i]
		}
	}
	return match
}

// LookupByIndex finds a toast by its index (1-based for user-friendliness).
// Returns nil if index is out of bounds.
func LookupByIndex(items []model.Item, index int) *model.Item {
	idx := index - 1
	if idx < 0 || idx >= len(items) {
		return nil
	}
	return &items[idx]
}

// Search finds toasts matching a term in title or description.
// Case-insensitive substring match.
func Search(items []model.Item, term string) []model.Item {
	if term == "" {
		return items
	}

	term = strings.ToLower(term)
	var result []model.Item
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), term) ||
			strings.Contains(strings.ToLower(item.Description), term) {
			result = append(result, item)
		}
	}
	return result
}

// UniqueApps returns the distinct app names, sorted case-insensitively.
func UniqueApps(items []model.Item) []string {
	seen := make(map[string]bool)
	var apps []string

	for _, item := range items {
		if item.AppName != "" && !seen[item.AppName] {
			seen[item.AppName] = true
			apps = append(apps, item.AppName)
		}
	}

	slices.SortFunc(apps, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return apps
}
