package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riadafridishibly/bigdirs/scanner"
	"github.com/riadafridishibly/bigdirs/tui"
)

func (c *cli) newRootsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "roots",
		Short: "List the filesystems or drives that can be scanned",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roots, err := scanner.ListRoots()
			if err != nil {
				return fmt.Errorf("listing roots: %w", err)
			}
			for _, r := range roots {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
}

func (c *cli) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// no configuration needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), c.version)
		},
	}
}

func (c *cli) runTUI(_ *cobra.Command, args []string) error {
	root, err := c.resolveRoot(args, "")
	if err != nil {
		return err
	}

	app := tui.NewApp(tui.Options{
		Root:                 root,
		Threshold:            int64(c.cfg.Threshold),
		ReplaceHomeWithTilde: true,
		Theme:                c.cfg.Theme,
	}, c.cfg.SessionOptions())

	if err := app.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}
