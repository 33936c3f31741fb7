package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSpecialtyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "specialty <condition>",
		Short:   "Show the specialty a condition label is routed to",
		Example: `  carepath specialty "Fungal infection"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := a.tables()
			if err != nil {
				return err
			}
			condition := strings.Join(args, " ")
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", condition, tables.RouteSpecialty(condition))
			return nil
		},
	}
}
