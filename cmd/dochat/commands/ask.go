package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"dochat/internal/document"
)

func newAskCmd() *cobra.Command {
	var question string
	cmd := &cobra.Command{
		Use:   "ask <file>",
		Short: "Ask a single question about a document",
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
			turn, err := p.Ask(cmd.Context(), question)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), turn.Answer)
			if pages := turn.Result.Pages(); len(pages) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\n(cited pages: %v)\n", pages)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "question to ask")
	cmd.MarkFlagRequired("question")
	return cmd
}
