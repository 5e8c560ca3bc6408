package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/catalog"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/config"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/dispute"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func execute(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "maritime",
		Short: "Maritime collision dispute module",
		Long: `maritime - maritime collision dispute module

Asks both agents of a dispute a set of questions about a collision at sea,
checks that their accounts agree and deduces the outcome under the 1910
Collision Convention.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newServeCmd(),
		newEvaluateCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "maritime %s\n", version)
		},
	}
}

// newEngine loads the configured catalog. A broken catalog aborts startup.
func newEngine(cfg *config.Config) (dispute.Engine, error) {
	c, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return dispute.Engine{}, err
	}
	engine := dispute.NewEngine(c, cfg.Rules.ArrestBarAnswer)
	if err := engine.Tree.Validate(); err != nil {
		return dispute.Engine{}, fmt.Errorf("validate decision tree: %w", err)
	}
	return engine, nil
}
