package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"escheck/internal/ecma"
)

func newVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List supported ECMAScript versions and their aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, id := range ecma.Versions() {
				p, err := ecma.Resolve(id, false, false)
				if err != nil {
					return err
				}
				names := make([]string, 0, 2)
				for _, alias := range ecma.Aliases(p.Level()) {
					names = append(names, string(alias))
				}
				marker := ""
				if ecma.Normalize(id) == ecma.DefaultVersion {
					marker = "  (default)"
				}
				if _, err := fmt.Fprintf(out, "%-8s level %-2d  %s%s\n", id, p.Level(), strings.Join(names, ", "), marker); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
