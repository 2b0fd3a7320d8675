package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/adapter/input"
	"github.com/jmylchreest/toasty/internal/dbus"
	"github.com/jmylchreest/toasty/internal/httpapi"
	"github.com/jmylchreest/toasty/internal/model"
)

var sendOpts struct {
	variant     string
	duration    time.Duration
	appName     string
	icon        string
	actionLabel string
	replaces    uint32
	viaHTTP     bool
	stdin       bool
}

var sendCmd = &cobra.Command{
	Use:   "send <title> [description]",
	Short: "Show a toast",
	Long: `Show a toast through the freedesktop notification interface.

The variant is carried as urgency and category hints, so any notification
server renders it sensibly; toastyd maps it back to the variant. With --http
the toast is pushed straight into toastyd's registry instead.

The id printed is the D-Bus notification id, or the toast id with --http.

Examples:
  toasty send "Build finished" --variant success
  toasty send "Disk almost full" "/home is at 95%" --variant warning --duration 10s
  toasty send "Deploy" "Rollout paused" --action-label Resume
  toasty send --http "Saved"
  make 2>&1 | tail -n 3 | toasty send --stdin --variant warning
  jq -c '.[] | {title: .name, variant: "success"}' done.json | toasty send --stdin

With --stdin, each input line is one toast: plain "title" or
"title<TAB>description", or a JSON object with title, description, variant,
duration_ms and app_name. A JSON array of such objects is also accepted.
Flags supply the defaults for fields a line leaves out.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVar(&sendOpts.variant, "variant", string(model.VariantDefault),
		"Toast variant (default, success, warning, danger)")
	sendCmd.Flags().DurationVarP(&sendOpts.duration, "duration", "d", 0,
		"Lifetime of the toast (0 = server default)")
	sendCmd.Flags().StringVar(&sendOpts.appName, "app-name", "toasty",
		"Application name shown with the toast")
	sendCmd.Flags().StringVar(&sendOpts.icon, "icon", "",
		"Icon name or path (D-Bus only)")
	sendCmd.Flags().StringVar(&sendOpts.actionLabel, "action-label", "",
		"Label of a default action button (D-Bus only)")
	sendCmd.Flags().Uint32Var(&sendOpts.replaces, "replaces", 0,
		"D-Bus id of a notification to replace")
	sendCmd.Flags().BoolVar(&sendOpts.viaHTTP, "http", false,
		"Push through toastyd's HTTP API instead of D-Bus")
	sendCmd.Flags().BoolVar(&sendOpts.stdin, "stdin", false,
		"Read toasts from stdin, one per line")
}

func runSend(cmd *cobra.Command, args []string) error {
	if sendOpts.stdin == (len(args) > 0) {
		return fmt.Errorf("specify a title or --stdin, not both")
	}

	variant, err := model.ParseVariant(sendOpts.variant)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	var entries []input.Entry
	if sendOpts.stdin {
		adapter := input.NewStdinAdapterWithReader(cmd.InOrStdin())
		if entries, err = adapter.Import(ctx); err != nil {
			return err
		}
	} else {
		entry := input.Entry{Title: args[0]}
		if len(args) > 1 {
			entry.Description = args[1]
		}
		entries = []input.Entry{entry}
	}

	send, err := newSender()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		v := variant
		if entry.Variant != "" || entry.Urgency != nil {
			if v, err = entry.ParsedVariant(); err != nil {
				return err
			}
		}
		if entry.AppName == "" {
			entry.AppName = sendOpts.appName
		}

		id, err := send(ctx, entry, v)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), id); err != nil {
			return err
		}
	}
	return nil
}

type sender func(ctx context.Context, entry input.Entry, variant model.Variant) (string, error)

// newSender connects to D-Bus or the HTTP API once for all entries.
func newSender() (sender, error) {
	if sendOpts.viaHTTP {
		if sendOpts.actionLabel != "" {
			return nil, fmt.Errorf("--action-label is only supported over D-Bus")
		}
		client, err := apiClient()
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, entry input.Entry, variant model.Variant) (string, error) {
			return sendHTTP(ctx, client, entry, variant)
		}, nil
	}

	client, err := dbus.NewClient()
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, entry input.Entry, variant model.Variant) (string, error) {
		return sendDBus(ctx, client, entry, variant)
	}, nil
}

// duration resolves an entry's lifetime, falling back to --duration.
func duration(entry input.Entry) time.Duration {
	if entry.DurationMs != nil {
		return time.Duration(*entry.DurationMs) * time.Millisecond
	}
	return sendOpts.duration
}

func sendDBus(ctx context.Context, client *dbus.Client, entry input.Entry, variant model.Variant) (string, error) {
	req := dbus.SendRequest{
		AppName:    entry.AppName,
		ReplacesID: sendOpts.replaces,
		Icon:       sendOpts.icon,
		Summary:    entry.Title,
		Body:       entry.Description,
		Timeout:    duration(entry),
	}
	req.SetVariant(variant)
	if sendOpts.actionLabel != "" {
		req.Actions = []dbus.Action{{Key: "default", Label: sendOpts.actionLabel}}
	}

	id, err := client.Notify(ctx, req)
	if err != nil {
		return "", err
	}
	logger.Debug("notification sent", "id", id, "variant", variant)
	return strconv.FormatUint(uint64(id), 10), nil
}

func sendHTTP(ctx context.Context, client *httpapi.Client, entry input.Entry, variant model.Variant) (string, error) {
	req := httpapi.CreateRequest{
		Title:       entry.Title,
		Description: entry.Description,
		Variant:     string(variant),
		AppName:     entry.AppName,
	}
	if d := duration(entry); d > 0 {
		ms := d.Milliseconds()
		req.DurationMs = &ms
	}

	id, err := client.Push(ctx, req)
	if err != nil {
		return "", err
	}
	logger.Debug("toast pushed", "id", id, "variant", variant)
	return id, nil
}
