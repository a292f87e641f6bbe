package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/captioner/internal/captions"
	"github.com/spf13/cobra"
)

func newSaveCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <caption-file>",
		Short: "Write captions from a caption file to their .txt sidecars",
		Long: `Read a YAML or JSON caption file (as produced by "captioner scan") and write
every record's caption verbatim to its caption_path.

Every record is attempted; failing paths are listed at the end.`,
		Example: `  captioner scan ./photos -o captions.yaml
  $EDITOR captions.yaml
  captioner save captions.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readCaptionFile(args[0])
			if err != nil {
				return err
			}

			if err := captions.PersistDir(doc.Records); err != nil {
				failed := captions.FailedPaths(err)
				return fmt.Errorf("failed to save %d of %d captions:\n  %s", len(failed), len(doc.Records), strings.Join(failed, "\n  "))
			}

			slog.Info("Captions saved", "count", len(doc.Records))
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d captions\n", len(doc.Records))
			return nil
		},
	}

	return cmd
}
