package main

import (
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"github.com/skosovsky/argmask"
)

// newTranslateCommand creates `argmask translate FILE param=value...`.
// A value containing commas is a sequence: `format=pdf,svg`.
func newTranslateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "translate FILE param=value...",
		Short: "Translate external values to internal values",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := newLoader(opts).load(cmd, args[0])
			if err != nil {
				return err
			}
			bound, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			translated, err := def.Translate(bound)
			if err != nil {
				return err
			}
			clog.FromContext(cmd.Context()).Debugf("translated %d argument(s)", len(translated))
			out := cmd.OutOrStdout()
			for _, a := range translated {
				fmt.Fprintf(out, "%s=%v\n", a.Name, a.Value)
			}
			return nil
		},
	}
}

func parseAssignments(args []string) (argmask.Args, error) {
	out := make(argmask.Args, 0, len(args))
	for _, s := range args {
		name, value, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q is not param=value", argmask.ErrInvalidArgument, s)
		}
		if !strings.Contains(value, ",") {
			out = append(out, argmask.Arg{Name: name, Value: value})
			continue
		}
		parts := strings.Split(value, ",")
		seq := make([]any, len(parts))
		for i, p := range parts {
			seq[i] = p
		}
		out = append(out, argmask.Arg{Name: name, Value: seq})
	}
	return out, nil
}
