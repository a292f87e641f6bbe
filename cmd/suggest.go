package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/captioner/internal/captions"
	"github.com/spf13/cobra"
)

func newSuggestCmd(opts *rootOptions) *cobra.Command {
	var all bool
	var write bool

	cmd := &cobra.Command{
		Use:   "suggest [directory]",
		Short: "Draft captions with a vision LLM",
		Long: `Ask a vision-capable LLM (Ollama, OpenAI or Gemini) to caption images.

By default only images still captioned with the bare trigger word are sent.
Suggestions are printed; pass --write to save them to the .txt files.`,
		Example: `  # Preview suggestions from a local Ollama model
  captioner suggest ./photos --provider ollama --model llava:13b

  # Caption everything with OpenAI and save
  captioner suggest ./photos --provider openai --all --write`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			directory, err := opts.directoryArg(args)
			if err != nil {
				return err
			}
			triggerWord, err := opts.triggerWordFlag(cmd)
			if err != nil {
				return err
			}
			provider := stringFlag(cmd, "provider", opts.cfg.Provider)
			model := stringFlag(cmd, "model", opts.cfg.Model)

			suggester, err := newSuggester(provider, model)
			if err != nil {
				return err
			}
			if suggester == nil {
				return fmt.Errorf("a caption provider is required (--provider ollama, openai or gemini)")
			}

			records, err := captions.ScanDir(directory, triggerWord)
			if err != nil {
				return err
			}

			var updated []captions.Record
			errorCount := 0
			for _, record := range records {
				if !all && record.Caption != triggerWord {
					continue
				}

				caption, err := suggester.Suggest(cmd.Context(), record.ImagePath, triggerWord)
				if err != nil {
					slog.Warn("Failed to suggest caption", "image", record.ImagePath, "error", err)
					errorCount++
					continue
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", filepath.Base(record.ImagePath), caption)
				record.Caption = caption
				updated = append(updated, record)
			}

			if write && len(updated) > 0 {
				if err := captions.PersistDir(updated); err != nil {
					failed := captions.FailedPaths(err)
					return fmt.Errorf("failed to save %d captions:\n  %s", len(failed), strings.Join(failed, "\n  "))
				}
				slog.Info("Suggested captions saved", "count", len(updated))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nSuggested: %d  Errors: %d\n", len(updated), errorCount)
			return nil
		},
	}

	cmd.Flags().String("trigger-word", "p3rs0n", "Caption for images without one")
	cmd.Flags().String("provider", "ollama", "LLM provider (ollama, openai, or gemini)")
	cmd.Flags().String("model", "", "Model name (defaults to provider's default)")
	cmd.Flags().BoolVar(&all, "all", false, "Also re-caption images that already have a caption")
	cmd.Flags().BoolVar(&write, "write", false, "Save suggestions to the caption files")

	return cmd
}
