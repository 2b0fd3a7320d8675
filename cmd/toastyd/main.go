// Package main is the entry point for the toastyd toast daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jmylchreest/toasty/internal/audio"
	"github.com/jmylchreest/toasty/internal/clock"
	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/daemon"
	"github.com/jmylchreest/toasty/internal/dbus"
	"github.com/jmylchreest/toasty/internal/facade"
	"github.com/jmylchreest/toasty/internal/gesture"
	"github.com/jmylchreest/toasty/internal/httpapi"
	"github.com/jmylchreest/toasty/internal/metrics"
	"github.com/jmylchreest/toasty/internal/model"
	"github.com/jmylchreest/toasty/internal/provider"
	"github.com/jmylchreest/toasty/internal/tui"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/toasty/toastyd.toml)")
	headless := flag.Bool("headless", false, "Log toasts instead of drawing them in the terminal")
	logPath := flag.String("log", "", "Log file (default: stderr when headless, $TMPDIR/toastyd.log otherwise)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	writeConfig := flag.Bool("write-config", false, "Write the default config file and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("toastyd version", version)
		os.Exit(0)
	}

	if *writeConfig {
		path, err := writeDefaultConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("wrote", path)
		os.Exit(0)
	}

	// The terminal host owns the screen, so logs go to a file unless headless
	var out io.Writer = os.Stderr
	if *logPath == "" && !*headless {
		*logPath = filepath.Join(os.TempDir(), "toastyd.log")
	}
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to open log file:", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *headless); err != nil {
		logger.Error("toastyd failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// run wires the daemon together and blocks until ctx is cancelled or the
// terminal host exits.
func run(ctx context.Context, logger *slog.Logger, configPath string, headless bool) error {
	logger.Info("starting toastyd", "version", version)

	if configPath == "" {
		configPath = config.ConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		host     provider.Host
		termHost *tui.Host
		hostDone <-chan struct{}
	)
	if !headless {
		termHost = tui.NewHost(tui.Options{
			Gesture:      gestureConfig(cfg),
			PauseOnHover: cfg.Behavior.PauseOnHover,
		}, logger.With("component", "tui"))
		host = termHost
		hostDone = termHost.Done()
	}

	p, err := provider.Mount(provider.Config{
		Position: cfg.Position(),
		Max:      cfg.Toasts.Max,
		Host:     host,
		Facade:   facade.Global,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to mount toasts: %w", err)
	}
	reg := p.Registry()

	defer func() {
		if err := p.Unmount(); err != nil {
			logger.Warn("error unmounting provider", "error", err)
		}
		if termHost != nil {
			if err := termHost.Close(); err != nil {
				logger.Warn("error closing terminal host", "error", err)
			}
		}
	}()

	notifier := daemon.NewInternalNotifier(facade.Global, clock.Real{}, logger.With("component", "notifier"))

	reg.AddObserver(metrics.New())

	audioManager := audio.NewManager(cfg, logger.With("component", "audio"))
	audioManager.SetErrorCallback(notifier.NotifyAudioError)
	reg.AddObserver(audioManager)
	defer audioManager.Close()

	// D-Bus notification server
	var bridge *daemon.Bridge
	if cfg.DBus.Enabled {
		server := dbus.NewServer(logger.With("component", "dbus"))
		info := dbus.DefaultServerInfo()
		info.Version = version
		server.SetServerInfo(info)

		bridge = daemon.NewBridge(reg, server, cfg.TimeoutForUrgency, logger.With("component", "bridge"))
		bridge.SetPushHook(func(req dbus.Request, opts model.Options) {
			audioManager.SetHint(opts.ID, req.SoundFile, req.SuppressSound)
		})

		if err := server.Start(bridge); err != nil {
			logger.Warn("failed to start D-Bus server", "error", err)
			notifier.NotifyDBusUnavailable(err)
			bridge = nil
		} else {
			reg.AddObserver(bridge)
			defer func() {
				if err := server.Stop(); err != nil {
					logger.Warn("error stopping D-Bus server", "error", err)
				}
			}()
		}
	}

	// HTTP ingress and metrics
	if cfg.HTTP.Listen != "" {
		srv := httpapi.NewServer(reg, httpapi.Options{Logger: logger.With("component", "http")})
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.HTTP.Listen); err != nil {
				logger.Error("HTTP server failed", "addr", cfg.HTTP.Listen, "error", err)
			}
		}()
		logger.Info("HTTP API listening", "addr", cfg.HTTP.Listen)
	}

	// Config hot-reload
	watcher := daemon.NewConfigWatcher(configPath, logger.With("component", "config"))
	watcher.SetReloadCallback(func(newConfig *config.Config) {
		reg.SetMax(newConfig.Toasts.Max)
		if termHost != nil {
			termHost.SetOptions(gestureConfig(newConfig), newConfig.Behavior.PauseOnHover)
		}
		audioManager.UpdateConfig(newConfig)
		if bridge != nil {
			bridge.SetTimeoutFunc(newConfig.TimeoutForUrgency)
		}
		if newConfig.Position() != p.Position() {
			logger.Info("position change takes effect on restart", "position", newConfig.Position())
		}
		notifier.NotifyConfigReloaded()
	})
	watcher.SetErrorCallback(notifier.NotifyConfigError)
	if err := watcher.Start(ctx, cfg); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}
	defer watcher.Stop()

	notifier.NotifyStartup(version)
	logger.Info("toastyd ready", "position", p.Position(), "max", reg.Max(), "dbus", bridge != nil)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case <-hostDone:
		logger.Info("terminal host exited, shutting down")
		if err := termHost.Err(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return nil
}

// writeDefaultConfig saves the default configuration to path, refusing to
// overwrite an existing file.
func writeDefaultConfig(path string) (string, error) {
	if path == "" {
		path = config.ConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

func gestureConfig(cfg *config.Config) gesture.Config {
	return gesture.Config{
		CommitDistance: cfg.Gesture.CommitDistance,
		VerticalRatio:  cfg.Gesture.VerticalRatio,
		VerticalSlop:   cfg.Gesture.VerticalSlop,
	}
}
