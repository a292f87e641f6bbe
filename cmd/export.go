package cmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/captioner/internal/captions"
	"github.com/lehigh-university-libraries/captioner/internal/dataset"
	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var output string
	var includeImages bool

	cmd := &cobra.Command{
		Use:   "export [directory]",
		Short: "Export images and captions as a training manifest",
		Long: `Scan a directory and write one row per image (file_name, text, width, height)
to a .parquet or .jsonl manifest, following the Hugging Face imagefolder layout.

Parquet output can embed the image bytes with --include-images.`,
		Example: `  # metadata.jsonl next to the images
  captioner export ./photos -o ./photos/metadata.jsonl

  # Self-contained parquet file
  captioner export ./photos -o train.parquet --include-images`,
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

			if err := dataset.Export(captions.LocalFS(), records, output, dataset.Options{IncludeImages: includeImages}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d images to %s\n", len(records), output)
			return nil
		},
	}

	cmd.Flags().String("trigger-word", "p3rs0n", "Caption for images without one")
	cmd.Flags().StringVarP(&output, "output", "o", "dataset.parquet", "Manifest path (.parquet or .jsonl)")
	cmd.Flags().BoolVar(&includeImages, "include-images", false, "Embed image bytes (parquet only)")

	return cmd
}
