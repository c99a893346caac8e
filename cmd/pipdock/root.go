package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pipdock/internal/app"
	"pipdock/internal/ipc"
	"pipdock/internal/storage"
	"pipdock/pkg/config"
	"pipdock/pkg/global"
	"pipdock/pkg/logger"
)

const version = "1.0.0"

// Shared CLI flags
var (
	configPath string
	debug      bool
)

// SetupRootCmd builds the command tree. With no subcommand pipdock opens the
// desktop window.
func SetupRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pipdock",
		Short: "Dock YouTube picture-in-picture on your second monitor",
		Long: `pipdock watches for a YouTube video in the focused browser window, asks the
browser for picture-in-picture and moves the floating player to a secondary
monitor.

Just type 'pipdock' to open the window, or 'pipdock run' to work headless.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: user config directory)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(RunCmd())
	rootCmd.AddCommand(controlCmd(ipc.CmdStart, "Start monitoring in the running instance"))
	rootCmd.AddCommand(controlCmd(ipc.CmdStop, "Stop monitoring in the running instance"))
	rootCmd.AddCommand(controlCmd(ipc.CmdStatus, "Show whether the running instance is monitoring"))
	rootCmd.AddCommand(controlCmd(ipc.CmdTrigger, "Run one detection pass in the running instance"))
	rootCmd.AddCommand(HistoryCmd())
	rootCmd.AddCommand(ConfigCmd())
	return rootCmd
}

func newLogger(withFile bool) (*logger.Logger, error) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	opts := []logger.Option{logger.WithConsole(), logger.WithLevel(level)}
	if withFile {
		if path, err := logger.DefaultLogPath(); err == nil {
			opts = append(opts, logger.WithFile(path))
		}
	}
	return logger.NewLogger(opts...)
}

// session is everything a long-lived pipdock process holds open.
type session struct {
	log     *logger.Logger
	cfg     *config.Config
	runner  *app.Runner
	watcher *config.Watcher
}

func openSession(ctx context.Context) (*session, error) {
	log, err := newLogger(true)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Info("Starting pipdock",
		"version", version,
		"pid", os.Getpid(),
		"os", runtime.GOOS,
		"arch", runtime.GOARCH,
		"debug", debug)

	if _, err := ipc.SendCommand(ipc.SocketPath(), ipc.CmdStatus, log); err == nil {
		log.Close()
		return nil, fmt.Errorf("pipdock is already running")
	}

	cfg, err := config.FindConfig(configPath, log)
	if err != nil {
		log.Error("Failed to load configuration", err, "provided_path", configPath)
		log.Close()
		return nil, err
	}
	log.Info("Configuration loaded successfully",
		"path", cfg.GetPath(),
		"site_marker", cfg.GetSiteMarker(),
		"hotkey", cfg.GetHotkey())

	global.InitGlobals(cfg, log)

	deps := app.Deps{}
	if dbPath, err := storage.DefaultPath(); err != nil {
		log.Warn("Activation history disabled", "error", err)
	} else if db, err := storage.Open(dbPath); err != nil {
		log.Warn("Activation history disabled", "error", err)
	} else {
		deps.History = db
	}

	runner, err := app.NewRunner(ctx, cfg, log, deps)
	if err != nil {
		if deps.History != nil {
			deps.History.Close()
		}
		log.Close()
		return nil, err
	}

	s := &session{log: log, cfg: cfg, runner: runner}
	if path := cfg.GetPath(); path != "" {
		w, err := config.Watch(path, log, func(next *config.Config) {
			if err := runner.ApplyConfig(next); err != nil {
				log.Error("Reloaded configuration rejected", err)
				return
			}
			global.SetConfig(next)
		})
		if err != nil {
			log.Warn("Config hot reload disabled", "error", err)
		} else {
			s.watcher = w
		}
	}
	return s, nil
}

// serve runs the control socket until ctx is done.
func (s *session) serve(ctx context.Context) {
	srv := ipc.NewServer(ipc.SocketPath(), s.runner, s.log)
	go func() {
		if err := srv.Serve(ctx); err != nil {
			s.log.Error("Control socket failed", err)
		}
	}()
}

func (s *session) Close() {
	if s.watcher != nil {
		s.watcher.Close()
	}
	if err := s.runner.Close(); err != nil {
		s.log.Error("Failed to close runner", err)
	}
	s.log.Info("pipdock stopped")
	s.log.Close()
}
