package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/captioner/internal/captions"
	"github.com/lehigh-university-libraries/captioner/internal/handlers"
	"github.com/lehigh-university-libraries/captioner/internal/storage"
	"github.com/lehigh-university-libraries/captioner/internal/suggest"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the captioning interface",
		Long: `Starts the Captioner web interface on the specified port.

Enter an image directory and a trigger word, click "Load Images", edit the
captions next to each image and click "Save All" to write the .txt files.`,
		Example: `  # Start server on default port 8888
  captioner serve

  # Keep sessions across restarts and use Gemini for suggestions
  captioner serve --session-db sessions.db --provider gemini`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			port := stringFlag(cmd, "port", cfg.Port)
			sessionDB := stringFlag(cmd, "session-db", cfg.SessionDB)
			provider := stringFlag(cmd, "provider", cfg.Provider)
			model := stringFlag(cmd, "model", cfg.Model)

			var store storage.Store = storage.New()
			if sessionDB != "" {
				db, err := storage.NewSQLite(sessionDB)
				if err != nil {
					return err
				}
				store = db
			}
			defer store.Close()

			suggester, err := newSuggester(provider, model)
			if err != nil {
				return err
			}

			handler := handlers.New(handlers.Options{
				Store:       store,
				FS:          captions.LocalFS(),
				Suggester:   suggester,
				Directory:   cfg.Directory,
				TriggerWord: cfg.TriggerWord,
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: handler.Routes(),
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Captioner interface available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringP("port", "p", "8888", "Port to listen on")
	cmd.Flags().String("session-db", "", "SQLite file to keep sessions in (default: in memory)")
	cmd.Flags().String("provider", "ollama", "Caption suggestion provider (ollama, openai, gemini, none)")
	cmd.Flags().String("model", "", "Model name (defaults to provider's default)")

	return cmd
}

// newSuggester returns nil when suggestions are disabled.
func newSuggester(provider, model string) (*suggest.Suggester, error) {
	if provider == "" || provider == "none" {
		return nil, nil
	}
	p, err := suggest.NewProvider(provider)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = suggest.DefaultModel(provider)
	}
	slog.Debug("Caption suggestions enabled", "provider", provider, "model", model)
	return suggest.New(captions.LocalFS(), p, model), nil
}
