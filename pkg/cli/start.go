package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getuserd/userd/pkg/api"
	"github.com/getuserd/userd/pkg/cli/internal/ports"
	"github.com/getuserd/userd/pkg/config"
	"github.com/getuserd/userd/pkg/directory"
	"github.com/getuserd/userd/pkg/logging"
	"github.com/spf13/cobra"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 30 * time.Second

var (
	startConfigFile    string
	startPort          int
	startHost          string
	startMode          string
	startIDPolicy      string
	startSeedPaths     []string
	startLogLevel      string
	startLogFormat     string
	startReadTimeout   int
	startWriteTimeout  int
	startMaxLogEntries int
	startNoRequestLog  bool
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the user directory server",
	Long: `Start the user directory server.

By default, the server starts on port 4380 in dto mode. You can configure
the server using flags, environment variables, or a userd.yaml config file
in the current directory.`,
	Example: `  # Start with defaults
  userd start

  # Start with a config file on a custom port
  userd start --config userd.yaml --port 3000

  # Start in basic mode (length-derived ids, no validation)
  userd start --mode basic

  # Force counter ids regardless of mode
  userd start --mode basic --id-policy sequence

  # Seed users from files at startup
  userd start --seed team.yaml --seed 'fixtures/*.yaml'

  # Start with JSON debug logging
  userd start --log-level debug --log-format json`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().IntVarP(&startPort, "port", "p", 4380, "HTTP server port")
	startCmd.Flags().StringVar(&startHost, "host", "", "Interface to bind (empty = all interfaces)")
	startCmd.Flags().StringVarP(&startConfigFile, "config", "c", "", "Path to configuration file")
	startCmd.Flags().StringVar(&startMode, "mode", "dto", "Behavioral mode (dto, basic)")
	startCmd.Flags().StringVar(&startIDPolicy, "id-policy", "", "Id assignment policy override (sequence, length)")
	startCmd.Flags().StringArrayVar(&startSeedPaths, "seed", nil, "Seed users from a YAML file or glob (repeatable)")
	startCmd.Flags().StringVar(&startLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	startCmd.Flags().StringVar(&startLogFormat, "log-format", "text", "Log format (text, json)")
	startCmd.Flags().IntVar(&startReadTimeout, "read-timeout", 30, "Read timeout in seconds")
	startCmd.Flags().IntVar(&startWriteTimeout, "write-timeout", 30, "Write timeout in seconds")
	startCmd.Flags().IntVar(&startMaxLogEntries, "max-log-entries", 1000, "Maximum request log entries")
	startCmd.Flags().BoolVar(&startNoRequestLog, "no-request-log", false, "Disable in-memory request history")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadStartConfig()
	if err != nil {
		return err
	}
	if err := applyStartFlags(cfg, cmd); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.ApplyDefaults()

	// Initialize structured logger
	log := logging.New(resolveLogging(cfg, cmd))

	// Check for port conflicts before binding
	if err := ports.Check(cfg.Port); err != nil {
		return formatPortError(cfg.Port, err)
	}

	metrics := directory.NewMetricsObserver()
	store := directory.NewStore(
		directory.WithIDPolicy(cfg.EffectiveIDPolicy()),
		directory.WithObserver(metrics),
	)

	seeds, err := collectSeeds(cfg, cfgPath)
	if err != nil {
		return err
	}
	if len(seeds) > 0 {
		store.Reset(seeds)
		fmt.Printf("Seeded %d users\n", len(seeds))
	}

	srv := api.New(cfg,
		api.WithStore(store),
		api.WithMetrics(metrics),
		api.WithLogger(log.With("component", "api")),
		api.WithVersion(Version),
	)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	printStartupMessage(cfg)
	waitForShutdown(srv)
	return nil
}

// loadStartConfig resolves the effective config: an explicit --config
// file, a discovered userd.yaml, or the built-in defaults.
func loadStartConfig() (*config.Config, string, error) {
	if startConfigFile != "" {
		cfg, err := config.Load(startConfigFile)
		if err != nil {
			return nil, "", err
		}
		return cfg, startConfigFile, nil
	}

	path, err := config.Discover()
	if err != nil {
		// No config file around; flags and defaults carry the day.
		return config.DefaultConfig(), "", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	fmt.Printf("Using config file %s\n", path)
	return cfg, path, nil
}

// applyStartFlags overlays flags the user actually set onto the config.
func applyStartFlags(cfg *config.Config, cmd *cobra.Command) error {
	flags := cmd.Flags()

	if flags.Changed("port") {
		cfg.Port = startPort
	}
	if flags.Changed("host") {
		cfg.Host = startHost
	}
	if flags.Changed("mode") {
		mode, err := config.ParseMode(startMode)
		if err != nil {
			return err
		}
		cfg.Mode = mode
	}
	if flags.Changed("id-policy") {
		if _, err := directory.ParseIDPolicy(startIDPolicy); err != nil {
			return err
		}
		cfg.IDPolicy = startIDPolicy
	}
	if flags.Changed("read-timeout") {
		cfg.ReadTimeout = startReadTimeout
	}
	if flags.Changed("write-timeout") {
		cfg.WriteTimeout = startWriteTimeout
	}
	if flags.Changed("max-log-entries") {
		cfg.MaxLogEntries = startMaxLogEntries
	}
	if startNoRequestLog {
		disabled := false
		cfg.LogRequests = &disabled
	}
	return nil
}

// resolveLogging picks log settings: flags the user set win, then the
// config file, then the flag defaults.
func resolveLogging(cfg *config.Config, cmd *cobra.Command) logging.Config {
	level := startLogLevel
	format := startLogFormat
	if cfg.Logging != nil {
		if cfg.Logging.Level != "" && !cmd.Flags().Changed("log-level") {
			level = cfg.Logging.Level
		}
		if cfg.Logging.Format != "" && !cmd.Flags().Changed("log-format") {
			format = cfg.Logging.Format
		}
	}
	return logging.Config{
		Level:  logging.ParseLevel(level),
		Format: logging.ParseFormat(format),
	}
}

// collectSeeds gathers seed users from the config file and --seed flags.
// Config-file references resolve relative to the config file's directory,
// flag paths relative to the working directory.
func collectSeeds(cfg *config.Config, cfgPath string) ([]directory.SeedUser, error) {
	seeds, err := config.LoadAllSeeds(cfg.Seed, config.BaseDir(cfgPath))
	if err != nil {
		return nil, err
	}

	if len(startSeedPaths) > 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
		for _, path := range startSeedPaths {
			users, err := config.LoadSeedsFromEntry(seedEntryForPath(path), cwd)
			if err != nil {
				return nil, fmt.Errorf("--seed %s: %w", path, err)
			}
			seeds = append(seeds, users...)
		}
	}

	return seeds, nil
}

// seedEntryForPath treats paths containing glob metacharacters as
// patterns and everything else as a single file reference.
func seedEntryForPath(path string) config.SeedEntry {
	if strings.ContainsAny(path, "*?[") {
		return config.SeedEntry{Files: path}
	}
	return config.SeedEntry{File: path}
}

// formatPortError formats a port availability error with suggestions.
func formatPortError(port int, err error) error {
	if errors.Is(err, syscall.EACCES) {
		return fmt.Errorf("permission denied binding port %d: ports below 1024 require elevated privileges", port)
	}
	if !errors.Is(err, syscall.EADDRINUSE) {
		return fmt.Errorf("failed to check port %d availability: %w", port, err)
	}

	return fmt.Errorf(`port %d already in use

Suggestions:
  - Use a different port: userd start --port %d
  - Check what's using the port: lsof -i :%d
  - Stop the other process and try again`, port, port+1, port)
}

// printStartupMessage prints the server startup information.
func printStartupMessage(cfg *config.Config) {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	fmt.Printf("userd running on http://%s:%d (mode: %s, ids: %s)\n",
		host, cfg.Port, cfg.Mode, cfg.EffectiveIDPolicy())
	fmt.Println("Press Ctrl+C to stop")
}

// waitForShutdown blocks until interrupt, then gracefully stops the server.
func waitForShutdown(srv *api.API) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	fmt.Println("\nShutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: server shutdown error: %v\n", err)
	}

	fmt.Println("Server stopped")
}
