package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"dochat/internal/document"
)

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <file>",
		Short: "Generate a summary of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger()
			p, closer, err := assemble(cfg, logger)
			if err != nil {
				return err
			}
			defer closer()

			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}
			if err := p.Ingest(cmd.Context(), doc); err != nil {
				return err
			}
			turn, err := p.Summarize(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), turn.Answer)
			return nil
		},
	}
}
