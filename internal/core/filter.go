// Package core provides filtering, sorting, and lookup logic for toast
// listings.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/toasty/internal/model"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // Field name: id, app, title, description, variant, age
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	regex   *regexp.Regexp // Compiled regex for ~= operator
	rank    int            // Parsed variant rank
	created time.Time      // Creation cutoff for age comparisons
}

// FilterExpr represents a compound filter expression.
// Multiple conditions are ANDed together.
type FilterExpr struct {
	Conditions []FilterCondition
}

// FilterOptions specifies simple criteria for filtering toasts.
type FilterOptions struct {
	Since   time.Duration  // Only toasts created within the last Since (0=all)
	App     string         // Exact match on app name
	Variant *model.Variant // Filter by variant (nil=any)
	Limit   int            // Maximum results (0=unlimited)
	Now     time.Time      // Reference time (zero = time.Now())
}

// Filter filters toasts based on the provided options.
func Filter(items []model.Item, opts FilterOptions) []model.Item {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	result := make([]model.Item, 0, len(items))

	for _, item := range items {
		if opts.Since > 0 && item.CreatedAt.Before(now.Add(-opts.Since)) {
			continue
		}
		if opts.App != "" && item.AppName != opts.App {
			continue
		}
		if opts.Variant != nil && item.Variant != *opts.Variant {
			continue
		}
		result = append(result, item)
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

// VariantRank orders variants by severity: default < success < warning < danger.
func VariantRank(v model.Variant) int {
	switch v {
	case model.VariantSuccess:
		return 1
	case model.VariantWarning:
		return 2
	case model.VariantDanger:
		return 3
	default:
		return 0
	}
}

// ParseDuration parses a duration string with extended formats.
// Supports: 90s, 5m, 1h, 1d, 0 (no limit)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "0" || s == "" {
		return 0, nil
	}

	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

// ParseFilter parses a filter expression string into a FilterExpr.
// Format: "field=value,field2~value2,field3>value3"
// Multiple conditions are comma-separated and ANDed together.
//
// Supported fields: id, app, title, description, variant, age
// Supported operators: = (equal), != (not equal), ~ (contains), ~= (regex), >, <, >=, <=
//
// Examples:
//   - "app=firefox" - exact app name match
//   - "title~failed" - title contains "failed"
//   - "variant>=warning" - warnings and dangers
//   - "age<30s" - toasts created in the last 30 seconds
func ParseFilter(expr string) (*FilterExpr, error) {
	return ParseFilterAt(expr, time.Now())
}

// ParseFilterAt is ParseFilter with an explicit reference time for age
// conditions.
func ParseFilterAt(expr string, now time.Time) (*FilterExpr, error) {
	filter := &FilterExpr{}
	if expr == "" {
		return filter, nil
	}

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		cond, err := parseCondition(part, now)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}

	return filter, nil
}

// parseCondition parses a single condition like "app=firefox" or "title~error"
func parseCondition(s string, now time.Time) (FilterCondition, error) {
	// Longest operators first so "!=" is not read as "="
	operators := []FilterOp{
		FilterOpNotEqual,
		FilterOpGreaterEq,
		FilterOpLessEq,
		FilterOpRegex,
		FilterOpEqual,
		FilterOpContains,
		FilterOpGreater,
		FilterOpLess,
	}

	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx <= 0 {
			continue
		}
		cond := FilterCondition{
			Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
			Operator: op,
			Value:    strings.TrimSpace(s[idx+len(op):]),
		}
		if err := cond.init(now); err != nil {
			return FilterCondition{}, err
		}
		return cond, nil
	}

	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

// init pre-parses and validates the condition value.
func (c *FilterCondition) init(now time.Time) error {
	switch c.Field {
	case "id":
	case "app", "app_name", "appname":
		c.Field = "app"
	case "title", "summary":
		c.Field = "title"
	case "description", "desc", "body":
		c.Field = "description"
	case "variant", "type":
		c.Field = "variant"
		v, err := model.ParseVariant(c.Value)
		if err != nil {
			return err
		}
		c.rank = VariantRank(v)
	case "age":
		d, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid age value: %w", err)
		}
		c.created = now.Add(-d)
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}

	return nil
}

// Match tests if a toast matches the filter expression.
// All conditions must match (AND logic).
func (f *FilterExpr) Match(item model.Item) bool {
	for _, cond := range f.Conditions {
		if !cond.Match(item) {
			return false
		}
	}
	return true
}

// Match tests if a toast matches this single condition.
func (c *FilterCondition) Match(item model.Item) bool {
	switch c.Field {
	case "id":
		return c.matchString(item.ID)
	case "app":
		return c.matchString(item.AppName)
	case "title":
		return c.matchString(item.Title)
	case "description":
		return c.matchString(item.Description)
	case "variant":
		return c.matchInt(VariantRank(item.Variant), c.rank)
	case "age":
		return c.matchAge(item.CreatedAt)
	default:
		return false
	}
}

func (c *FilterCondition) matchString(fieldValue string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.Value
	case FilterOpNotEqual:
		return fieldValue != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(fieldValue), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(fieldValue)
	default:
		return false
	}
}

func (c *FilterCondition) matchInt(fieldValue, condValue int) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == condValue
	case FilterOpNotEqual:
		return fieldValue != condValue
	case FilterOpGreater:
		return fieldValue > condValue
	case FilterOpLess:
		return fieldValue < condValue
	case FilterOpGreaterEq:
		return fieldValue >= condValue
	case FilterOpLessEq:
		return fieldValue <= condValue
	default:
		return false
	}
}

// matchAge compares ages: "age<30s" keeps toasts younger than 30 seconds,
// i.e. created after the cutoff.
func (c *FilterCondition) matchAge(created time.Time) bool {
	switch c.Operator {
	case FilterOpLess:
		return created.After(c.created)
	case FilterOpGreater:
		return created.Before(c.created)
	case FilterOpLessEq:
		return !created.Before(c.created)
	case FilterOpGreaterEq:
		return !created.After(c.created)
	default:
		return false
	}
}

// FilterWithExpr filters toasts using a filter expression.
func FilterWithExpr(items []model.Item, expr *FilterExpr) []model.Item {
	if expr == nil || len(expr.Conditions) == 0 {
		return items
	}

	result := make([]model.Item, 0, len(items))
	for _, item := range items {
		if expr.Match(item) {
			result = append(result, item)
		}
	}
	return result
}
