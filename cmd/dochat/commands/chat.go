package commands

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"dochat/internal/document"
	"dochat/internal/summarizer"
	"dochat/internal/tui"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <file>",
		Short: "Ingest a document and chat with it interactively",
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

			// Extractive preview so the header is useful before the first
			// generator round trip.
			var text strings.Builder
			for _, page := range doc.Pages {
				text.WriteString(page.Text)
				text.WriteString("\n")
			}
			preview := summarizer.New().Summarize(text.String(), 2)

			m := tui.New(p, doc.Title, preview)
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}
