package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/dbus"
	"github.com/jmylchreest/toasty/internal/httpapi"
)

var closeOpts struct {
	all bool
}

var closeCmd = &cobra.Command{
	Use:   "close [id...]",
	Short: "Close toasts",
	Long: `Close one or more toasts.

Numeric ids are D-Bus notification ids and are closed through the
notification interface; toast ids (as printed by "toasty list --format ids")
are closed through toastyd's HTTP API.

Examples:
  toasty close 42
  toasty close toast_01HZ3X2J5YFMK2V3P4Q6R7S8T9
  toasty list --format ids | xargs toasty close
  toasty close --all`,
	RunE: runClose,
}

func init() {
	rootCmd.AddCommand(closeCmd)

	closeCmd.Flags().BoolVar(&closeOpts.all, "all", false,
		"Close every live toast")
}

func runClose(cmd *cobra.Command, args []string) error {
	if closeOpts.all == (len(args) > 0) {
		return fmt.Errorf("specify toast ids or --all, not both")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	if closeOpts.all {
		client, err := apiClient()
		if err != nil {
			return err
		}
		return client.Clear(ctx)
	}

	var (
		dbusClient *dbus.Client
		apiClnt    *httpapi.Client
		failed     int
	)
	for _, id := range args {
		var err error
		if n, convErr := strconv.ParseUint(id, 10, 32); convErr == nil {
			if dbusClient == nil {
				if dbusClient, err = dbus.NewClient(); err != nil {
					return err
				}
			}
			err = dbusClient.Close(ctx, uint32(n))
		} else {
			if apiClnt == nil {
				if apiClnt, err = apiClient(); err != nil {
					return err
				}
			}
			err = apiClnt.Remove(ctx, id)
		}

		switch {
		case errors.Is(err, httpapi.ErrNotFound):
			logger.Warn("toast not found", "id", id)
			failed++
		case err != nil:
			logger.Error("failed to close toast", "id", id, "error", err)
			failed++
		default:
			logger.Debug("toast closed", "id", id)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d toasts could not be closed", failed, len(args))
	}
	return nil
}
