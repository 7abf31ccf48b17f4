package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taleteller/internal/domain/entity"
)

func init() {
	cmd := &cobra.Command{
		Use:   "modes",
		Short: "List story modes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(entity.Modes()); err != nil {
					exitErr("modes", err)
				}
				return
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODE\tLABEL\tDESCRIPTION")
			for _, m := range entity.Modes() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.Mode, m.Label, m.Description)
			}
			if err := w.Flush(); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}

	cmd.Flags().Bool("json", false, "Output JSON")

	RootCmd.AddCommand(cmd)
}
