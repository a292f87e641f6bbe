package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/captioner/internal/config"
	"github.com/lehigh-university-libraries/captioner/internal/logging"
	"github.com/spf13/cobra"
)

// rootOptions carries the settings resolved before any subcommand runs.
type rootOptions struct {
	configPath string
	logLevel   string
	logFile    string

	cfg       config.Config
	logCloser io.Closer
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "captioner",
		Short: "Browse a directory of images and edit their caption sidecar files",
		Long: `Captioner pairs every image in a directory with a .txt caption file of the same name.

Images without a caption start with a configurable trigger word. Captions can be
edited in the browser (captioner serve) or round-tripped through a YAML file
(captioner scan / captioner save), and exported as a training manifest.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load(opts.configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = opts.logLevel
			}
			if cmd.Flags().Changed("log-file") {
				cfg.LogFile = opts.logFile
			}

			closer, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logCloser = closer
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logCloser != nil {
				_ = opts.logCloser.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Also write JSON logs to this file")

	// Add subcommands
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newScanCmd(opts))
	cmd.AddCommand(newSaveCmd(opts))
	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newSuggestCmd(opts))

	return cmd
}

// directoryArg picks the directory from args, falling back to the config.
func (o *rootOptions) directoryArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if o.cfg.Directory != "" {
		return o.cfg.Directory, nil
	}
	return "", errMissingDirectory
}

// stringFlag returns the flag value when set on the command line, else fallback.
func stringFlag(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}

// triggerWordFlag resolves --trigger-word and rejects a blank value, since
// it is the caption of every image without one.
func (o *rootOptions) triggerWordFlag(cmd *cobra.Command) (string, error) {
	triggerWord := stringFlag(cmd, "trigger-word", o.cfg.TriggerWord)
	if strings.TrimSpace(triggerWord) == "" {
		return "", fmt.Errorf("trigger word must not be empty")
	}
	return triggerWord, nil
}
