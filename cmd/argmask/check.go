package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skosovsky/argmask"
)

// newCheckCommand creates `argmask check FILE...`.
// Every manifest is checked; the command fails if any of them is invalid.
func newCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Validate definition manifests and print their choices",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := newLoader(opts)
			out := cmd.OutOrStdout()
			failed := 0
			for _, ref := range args {
				def, err := l.load(cmd, ref)
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", ref, err)
					failed++
					continue
				}
				fmt.Fprintf(out, "%s: ok\n", ref)
				printDefinition(cmd, def)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d definitions invalid", failed, len(args))
			}
			return nil
		},
	}
}

func printDefinition(cmd *cobra.Command, def *argmask.Definition) {
	out := cmd.OutOrStdout()
	info := make([]string, 0, len(def.Params()))
	for _, p := range def.Params() {
		choices := def.Choices(p)
		fmt.Fprintf(out, "  %s: %s\n", p, strings.Join(choices, ", "))
		info = append(info, argmask.ToolInfoEntry(choices))
	}
	fmt.Fprintf(out, "  toolinfo: %s\n", strings.Join(info, " "))
}
