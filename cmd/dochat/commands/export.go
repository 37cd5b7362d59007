package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	ledgersqlite "dochat/internal/ledger/sqlite"
)

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the recorded conversation history",
		Long: `Export renders the persisted conversation ledger as plain text.
It reads the SQLite history written by previous chat and ask invocations, so
it works without an active session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Ledger.Type == "memory" {
				return fmt.Errorf("ledger type %q keeps no history between runs; configure the sqlite ledger to export", cfg.Ledger.Type)
			}
			path, err := cfg.LedgerPath()
			if err != nil {
				return err
			}
			led, err := ledgersqlite.Open(path)
			if err != nil {
				return err
			}
			defer led.Close()

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := led.Export(w); err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported conversation history to %s\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write export to file instead of stdout")
	return cmd
}
