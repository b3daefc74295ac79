package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/riadafridishibly/bigdirs/export"
	"github.com/riadafridishibly/bigdirs/report"
	"github.com/riadafridishibly/bigdirs/scanner"
)

var allowedOutputs = []string{"table", "json"}

type scanFlags struct {
	output     string
	top        int
	exportPath string
}

func (c *cli) newScanCommand() *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Scan once and print the largest directories",
		Long: heredoc.Doc(`
			Scan a directory tree without the interactive UI and print every
			directory at or above the threshold. A progress line is shown on
			stderr when it is a terminal. Ctrl-C stops the scan and prints what
			was found so far.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(allowedOutputs, flags.output) {
				return fmt.Errorf("invalid output format %q: must be one of %v", flags.output, allowedOutputs)
			}
			if flags.top < 0 {
				return fmt.Errorf("top cannot be negative")
			}

			root, err := c.resolveRoot(args, ".")
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return c.runScan(ctx, root, flags, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "table", "Output format: json or table")
	f.IntVarP(&flags.top, "top", "t", 0, "Only print the N largest directories (0 = all)")
	f.StringVar(&flags.exportPath, "export", "", "Also write the scan to this SQLite file")

	return cmd
}

func (c *cli) runScan(ctx context.Context, root string, flags scanFlags, stdout, stderr io.Writer) error {
	enableProgress := flags.output != "json" && isTerminal(stderr)

	opts := c.cfg.SessionOptions()
	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		opts.Hooks.OnProgress = func(p scanner.Progress) {
			fmt.Fprintf(stderr, "\r\033[2K%s\r", report.ProgressLine(p))
		}
	}

	s, err := scanner.NewSession(root, int64(c.cfg.Threshold), opts, nil)
	if err != nil {
		return err
	}
	if err := s.Start(); err != nil {
		return err
	}

	select {
	case <-s.Done():
	case <-ctx.Done():
		log.Info("Interrupted, stopping scan")
		s.Cancel()
		s.Wait()
	}

	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if flags.exportPath != "" {
		if err := exportSession(ctx, flags.exportPath, s); err != nil {
			return err
		}
	}

	return report.Print(report.New(s, flags.top), flags.output, stdout)
}

func exportSession(ctx context.Context, path string, s *scanner.Session) error {
	e, err := export.Open(path)
	if err != nil {
		return err
	}
	defer e.Close()

	// the scan context may already be cancelled by an interrupt
	id, err := e.WriteSession(context.WithoutCancel(ctx), s)
	if err != nil {
		return fmt.Errorf("export scan: %w", err)
	}
	log.Infof("Scan %d written to %s", id, path)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
