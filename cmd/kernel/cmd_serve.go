package main

import (
	"context"
	"fmt"

	"nihilistkernel/internal/generator"
	"nihilistkernel/internal/logging"
	"nihilistkernel/internal/server"
	"nihilistkernel/internal/store"

	"github.com/spf13/cobra"
)

var serveAddr string

// serveCmd runs the generation backend
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dialogue generation backend",
	Long: `Serves POST /api/generate. Topics are trimmed and lowercased, looked up in
the SQLite cache, and otherwise sent to Gemini; new dialogues are cached.

Requires GEMINI_API_KEY (or GOOGLE_API_KEY), from the environment or a .env file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :5000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	cache, err := store.Open(cfg.Server.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open dialogue cache: %w", err)
	}
	defer cache.Close()

	if n, err := cache.Count(ctx); err == nil {
		logging.Boot("dialogue cache holds %d entries", n)
	}

	gen, err := newGenerator(ctx)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Addr:          cfg.Server.Addr,
		AllowedOrigin: cfg.Server.AllowedOrigin,
		Mode:          cfg.Server.Mode,
		Generator:     gen,
		Cache:         cache,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func newGenerator(ctx context.Context) (generator.Generator, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		gen, err := generator.NewGemini(ctx, generator.GeminiConfig{
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			Timeout: cfg.GetLLMTimeout(),
		})
		if err != nil {
			return nil, err
		}
		logging.Boot("generator: gemini model %s", gen.Model())
		return gen, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}
