package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"numlockd/internal/buildinfo"
	"numlockd/internal/config"
	"numlockd/internal/keylock"
	"numlockd/internal/logging"
	"numlockd/internal/session"
	"numlockd/internal/theme"
	"numlockd/internal/tray"
)

// crashRetention bounds how long crash dumps are kept.
const crashRetention = 30 * 24 * time.Hour

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "numlockd",
		Short: "Keep NumLock switched on for the interactive desktop session",
		Long: `numlockd runs in the notification area of the active console session and
forces a toggle key (NumLock by default) back into its configured state once
a second. The tray menu pauses enforcement or exits the agent.

Only one instance runs per machine; a second launch exits with code 32.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (default "+config.ConfigPath()+")")

	cmd.AddCommand(newAutostartCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// loadConfig reads and validates the configuration selected by opts.
func loadConfig(opts *rootOptions) (*config.Loader, *config.Config, error) {
	loader := config.NewLoader(opts.configPath)
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", errConfig, loader.Path(), err)
	}
	return loader, cfg, nil
}

func runAgent(opts *rootOptions) error {
	loader, cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	defer loader.Close()

	inst, err := acquireInstance(session.NewPlatform(), cfg, os.Stderr)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.LoggerConfig())
	if err != nil {
		return fmt.Errorf("%w: logging: %w", errConfig, err)
	}
	defer logger.Close()
	logging.SetDefault(logger)

	instanceID := uuid.NewString()
	logger.Info("starting numlockd",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"instance_id", instanceID,
		"session_id", inst.SessionID,
		"mutex", inst.MutexName,
		"config", loader.Path(),
		"key", cfg.Key.Name,
		"state", cfg.Key.State,
	)

	crash := logging.NewCrashHandler(&logging.CrashHandlerConfig{
		Version:    buildinfo.Version,
		Component:  "numlockd",
		InstanceID: instanceID,
		OnCrash: func(r logging.CrashReport) {
			logger.Error("agent crashed", "panic", r.PanicValue)
			_ = logger.Sync()
		},
	})
	if err := crash.CleanupOldCrashReports(crashRetention); err != nil {
		logger.Debug("crash report cleanup failed", "error", err)
	}

	key, err := keylock.LookupKey(cfg.Key.Name)
	if err != nil {
		return fmt.Errorf("%w: %w", errConfig, err)
	}
	enforcer := keylock.NewEnforcer(keylock.NewKeyboard(), keylock.Config{
		Key:       key,
		DesiredOn: cfg.Key.DesiredOn(),
		Logger:    logger.WithComponent("keylock").Logger,
	})

	icons, err := tray.IconPaths(config.PlatformCacheDir(), cfg.Tray.LightIcon, cfg.Tray.DarkIcon)
	if err != nil {
		logger.Error("icon assets unavailable", "error", err)
		return fmt.Errorf("%w: %w", tray.ErrSetup, err)
	}

	stopWatch := watchConfig(loader, logger)
	defer stopWatch()

	var (
		code   int
		runErr error
	)
	panicked := crash.Recover(func() {
		code, runErr = tray.Run(tray.Options{
			Title:     cfg.Tray.Title,
			IconPaths: icons,
			Enforcer:  enforcer,
			Theme:     theme.NewProbe(logger.WithComponent("theme").Logger),
			Logger:    logger.WithComponent("tray").Logger,
		})
	})

	stats := enforcer.Stats()
	logger.Info("numlockd stopped",
		"exit_code", code,
		"passes", stats.Passes,
		"corrections", stats.Corrections,
	)

	switch {
	case panicked:
		return errCrashed
	case runErr != nil:
		return runErr
	case code != exitOK:
		return &exitError{code: code}
	}
	return nil
}

// acquireInstance runs the session guard before any file sink exists. A
// refused launch logs to stderr only and never touches the log file or the
// crash directory owned by the running agent.
func acquireInstance(platform session.Platform, cfg *config.Config, stderr io.Writer) (*session.Instance, error) {
	bootstrap := logging.NewWithWriter(stderr, cfg.Logging.LoggerConfig())

	guard := session.NewGuard(platform, cfg.Instance.MutexName,
		bootstrap.WithComponent("session").Logger)
	inst, err := guard.TryAcquire()
	if err != nil {
		bootstrap.Error("startup refused", "error", err)
		return nil, err
	}
	return inst, nil
}

// watchConfig hot-reloads the log level. Everything else in the file takes
// effect on the next start.
func watchConfig(loader *config.Loader, logger *logging.Logger) func() {
	loader.OnChange(func(*config.Config) {
		level, err := logging.ParseLevel(loader.Config().Logging.Level)
		if err != nil {
			return
		}
		if level != logger.Level() {
			logger.SetLevel(level)
			logger.Info("log level changed", "level", logging.LevelString(level))
		}
	})

	if err := loader.Watch(); err != nil {
		logger.Warn("config watch unavailable", "error", err)
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case err := <-loader.Errors():
				logger.Warn("config reload rejected", "error", err)
			}
		}
	}()
	return func() { close(done) }
}
