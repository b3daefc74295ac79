// Package cli wires configuration, logging and the front-ends into cobra
// commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/MakeNowJust/heredoc/v2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/riadafridishibly/bigdirs/config"
)

type globalFlags struct {
	configPath   string
	threshold    config.Bytes
	workers      int
	progressMode string
	logLevel     string
	logFile      string
}

type cli struct {
	version string
	flags   globalFlags
	cfg     *config.Config

	logOutput io.Closer
}

// NewRootCommand builds the bigdirs command tree.
func NewRootCommand(version string) *cobra.Command {
	c := &cli{version: version, flags: globalFlags{threshold: config.DefaultThreshold}}

	root := &cobra.Command{
		Use:   "bigdirs [root]",
		Short: "Find the directories that use the most disk space",
		Long: heredoc.Doc(`
			bigdirs walks a directory tree, adds up the size of every directory
			and lists those at or above a threshold, largest first. Results show
			up while the scan is still running.

			Without a subcommand an interactive terminal UI is started. Pass a
			root to scan it right away, or pick one of the mounted filesystems
			from the selector (key 'r').
		`),
		Example: heredoc.Doc(`
			bigdirs ~
			bigdirs scan --threshold 500MiB --top 20 /var
			bigdirs serve --listen :9140 /srv
		`),
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) { c.closeLog() },
		RunE:              c.runTUI,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "Configuration file (default: config.yaml in ., ~/.bigdirs, /etc/bigdirs)")
	pf.Var(&c.flags.threshold, "threshold", "Minimum directory size to report (e.g. 500MiB, 2GB)")
	pf.IntVar(&c.flags.workers, "workers", 0, "Concurrent directory listings (0 = 2x CPUs, between 8 and 16)")
	pf.StringVar(&c.flags.progressMode, "progress-mode", "", "Progress estimate: discovered or prescan")
	pf.StringVar(&c.flags.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	pf.StringVar(&c.flags.logFile, "log-file", "", "Write logs to this file instead of stderr")

	root.AddCommand(
		c.newScanCommand(),
		c.newServeCommand(),
		c.newRootsCommand(),
		c.newVersionCommand(),
	)

	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(version string) int {
	if err := NewRootCommand(version).Execute(); err != nil {
		return 1
	}
	return 0
}

// setup loads the configuration, applies flag overrides and configures
// logging. The TUI owns the terminal, so it always logs to a file.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, path, err := config.Load(c.flags.configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("threshold") {
		cfg.Threshold = c.flags.threshold
	}
	if flags.Changed("workers") {
		cfg.Workers = c.flags.workers
	}
	if flags.Changed("progress-mode") {
		cfg.ProgressMode = c.flags.progressMode
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.flags.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = c.flags.logFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	c.cfg = cfg

	interactive := cmd == cmd.Root()
	if err := c.configureLogrus(cmd, interactive); err != nil {
		return err
	}

	if path != "" {
		log.Infof("Using configuration file %s", path)
	}
	return nil
}

func tempDir() string {
	if runtime.GOOS == "darwin" {
		return "/tmp"
	}
	return os.TempDir()
}

func (c *cli) configureLogrus(cmd *cobra.Command, interactive bool) error {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(c.cfg.Level())

	var (
		f   *os.File
		err error
	)
	switch {
	case c.cfg.LogFile != "":
		f, err = os.OpenFile(c.cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	case interactive:
		f, err = os.CreateTemp(tempDir(), "bigdirs-*.log")
		if err == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Logfile is being written in:", f.Name())
		}
	default:
		log.SetOutput(cmd.ErrOrStderr())
		return nil
	}
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	log.SetOutput(f)
	c.logOutput = f
	return nil
}

func (c *cli) closeLog() {
	if c.logOutput != nil {
		_ = c.logOutput.Close()
		c.logOutput = nil
	}
}

// resolveRoot picks the positional root, then the configured one, then
// fallback. The result is absolute unless it is empty.
func (c *cli) resolveRoot(args []string, fallback string) (string, error) {
	root := fallback
	switch {
	case len(args) > 0:
		root = args[0]
	case c.cfg.Root != "":
		root = c.cfg.Root
	}
	if root == "" {
		return "", nil
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving path %s: %w", root, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("path does not exist: %s", abs)
	}
	return abs, nil
}
