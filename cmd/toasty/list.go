package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/adapter/output"
	"github.com/jmylchreest/toasty/internal/core"
	"github.com/jmylchreest/toasty/internal/model"
)

var listOpts struct {
	// Filter options
	filter string
	search string
	limit  int

	// Sort options
	sortBy    string
	sortOrder string

	// Output options
	format     string
	field      string
	template   string
	descMaxLen int
	apps       bool
}

var listCmd = &cobra.Command{
	Use:   "list [index|id]",
	Short: "List live toasts",
	Long: `List the toasts toastyd is currently showing, oldest first.

With an index (1-based, after filtering and sorting) or a toast id (a unique
prefix is enough), outputs that toast only.

Filter expressions are comma-separated conditions over id, app, title,
description, variant and age, using =, !=, ~ (contains), ~= (regex), >, <,
>= and <=. Variants compare by severity; age compares against now.

Examples:
  toasty list
  toasty list --format json
  toasty list --filter "variant>=warning,age<1m"
  toasty list --sort variant --order desc --limit 3
  toasty list 2 --field description
  toasty list --apps --filter "variant=danger"
  toasty list --template '{{.Item.ID}} {{marker .Item.Variant}} {{.Item.Title}}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listOpts.filter, "filter", "",
		"Filter expression (e.g. \"app=firefox,variant>=warning\")")
	listCmd.Flags().StringVarP(&listOpts.search, "search", "s", "",
		"Search in title and description")
	listCmd.Flags().IntVarP(&listOpts.limit, "limit", "n", 0,
		"Maximum number of toasts to show (0=unlimited)")

	listCmd.Flags().StringVar(&listOpts.sortBy, "sort", string(core.SortByCreated),
		"Sort by field (created, app, variant, title)")
	listCmd.Flags().StringVar(&listOpts.sortOrder, "order", string(core.SortAsc),
		"Sort order (asc, desc)")

	listCmd.Flags().StringVarP(&listOpts.format, "format", "f", string(output.FormatPlain),
		"Output format (plain, json, yaml, ids)")
	listCmd.Flags().StringVar(&listOpts.field, "field", "",
		"Output a single field per toast (id, app, title, description, variant)")
	listCmd.Flags().StringVar(&listOpts.template, "template", "",
		"Custom Go template for plain output")
	listCmd.Flags().IntVar(&listOpts.descMaxLen, "desc-max-len", 0,
		"Truncate descriptions in plain output (0 = no limit)")
	listCmd.Flags().BoolVar(&listOpts.apps, "apps", false,
		"List the distinct app names of the matching toasts")
}

func runList(cmd *cobra.Command, args []string) error {
	expr, err := core.ParseFilter(listOpts.filter)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	client, err := apiClient()
	if err != nil {
		return err
	}

	list, err := client.List(ctx)
	if err != nil {
		return err
	}

	items := make([]model.Item, 0, len(list.Toasts))
	for _, v := range list.Toasts {
		items = append(items, v.Item())
	}

	items = core.FilterWithExpr(items, expr)
	items = core.Search(items, listOpts.search)
	core.Sort(items, core.SortOptions{
		Field: core.ParseSortField(listOpts.sortBy),
		Order: core.ParseSortOrder(listOpts.sortOrder),
	})
	items = core.Filter(items, core.FilterOptions{Limit: listOpts.limit})

	if listOpts.apps {
		for _, app := range core.UniqueApps(items) {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), app); err != nil {
				return err
			}
		}
		return nil
	}

	if len(args) > 0 {
		item := lookup(items, args[0])
		if item == nil {
			return fmt.Errorf("toast not found: %s", args[0])
		}
		items = []model.Item{*item}
	}

	return writeItems(cmd, items)
}

// lookup resolves a 1-based index or a toast id.
func lookup(items []model.Item, arg string) *model.Item {
	if index, err := strconv.Atoi(arg); err == nil {
		return core.LookupByIndex(items, index)
	}
	return core.LookupByID(items, arg)
}

func writeItems(cmd *cobra.Command, items []model.Item) error {
	w := cmd.OutOrStdout()
	if listOpts.field != "" {
		for i := range items {
			if _, err := fmt.Fprintln(w, output.FormatField(&items[i], listOpts.field)); err != nil {
				return err
			}
		}
		return nil
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = listOpts.template
	opts.DescMaxLen = listOpts.descMaxLen

	formatter, err := output.NewFormatter(output.FormatType(listOpts.format), opts)
	if err != nil {
		return err
	}
	return formatter.Format(w, items)
}
