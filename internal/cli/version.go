package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	v "github.com/linnemanlabs/go-core/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			vi := v.Get()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s\n", vi.AppName, vi.Version)
			fmt.Fprintf(w, "  commit: %s\n", vi.Commit)
			fmt.Fprintf(w, "  built:  %s\n", vi.BuildDate)
			fmt.Fprintf(w, "  go:     %s\n", vi.GoVersion)
		},
	}
}
