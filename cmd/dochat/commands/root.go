// Package commands wires the dochat CLI: document chat, one-shot questions,
// summaries, and conversation export.
package commands

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"dochat/internal/config"
)

var (
	cfgPath string
	verbose bool
)

// NewRootCmd builds the dochat command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dochat",
		Short: "Ask questions about a document using local inference",
		Long: `dochat ingests a document, indexes its passages, and answers
natural-language questions from the retrieved content. Inference runs against
a local Ollama server by default; nothing leaves your machine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (default ./dochat.yaml, then ~/.config/dochat/config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newChatCmd())
	root.AddCommand(newAskCmd())
	root.AddCommand(newSummarizeCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	cfg, path, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}
	log.Debug("loaded configuration", "path", path)
	return cfg, nil
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
