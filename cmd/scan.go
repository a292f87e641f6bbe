package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lehigh-university-libraries/captioner/internal/captions"
	"github.com/spf13/cobra"
)

func newScanCmd(opts *rootOptions) *cobra.Command {
	var output string
	var format string

	cmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "List images and their captions",
		Long: `Scan a directory for jpg, jpeg, png and gif images and print each image with
its caption sidecar path and current caption.

Images without a caption file, or with a blank one, get the trigger word.
Nothing is written to the image directory. The output can be edited and
written back with "captioner save".`,
		Example: `  # Print captions as YAML
  captioner scan ./photos --trigger-word sks

  # Write an editable caption file
  captioner scan ./photos -o captions.yaml`,
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

			records, err := captions.ScanDir(directory, triggerWord)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			doc := captionFile{
				Directory:   directory,
				TriggerWord: triggerWord,
				Records:     records,
			}
			if err := writeCaptionFile(out, doc, format); err != nil {
				return err
			}

			slog.Info("Scanned images", "directory", directory, "count", len(records))
			return nil
		},
	}

	cmd.Flags().String("trigger-word", "p3rs0n", "Caption for images without one")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format (yaml, json)")

	return cmd
}
