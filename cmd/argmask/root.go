package main

import (
	"log/slog"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"github.com/skosovsky/argmask"
	"github.com/skosovsky/argmask/fileregistry"
	"github.com/skosovsky/argmask/manifest"
)

const version = "0.1.0"

type rootOptions struct {
	verbose bool
	dir     string
}

// newRootCommand creates `argmask` with its subcommands.
func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "argmask",
		Short:         "Inspect argument definitions and translate external values",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			logger := clog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			cmd.SetContext(clog.WithLogger(cmd.Context(), logger))
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVarP(&opts.dir, "dir", "d", "",
		"resolve definitions by name from this directory instead of reading files")

	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(newTranslateCommand(opts))
	return cmd
}

// loader resolves a command-line reference to a definition: a manifest path, or a name under --dir.
type loader struct {
	reg *fileregistry.Registry
}

func newLoader(opts *rootOptions) *loader {
	if opts.dir == "" {
		return &loader{}
	}
	return &loader{reg: fileregistry.New(opts.dir)}
}

func (l *loader) load(cmd *cobra.Command, ref string) (*argmask.Definition, error) {
	if l.reg != nil {
		return l.reg.GetDefinition(cmd.Context(), ref)
	}
	return manifest.ParseFile(ref)
}
