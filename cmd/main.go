package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/config"
	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/db"
	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/embedding"
	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/helper"
	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/llmservice"
	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/memstore"
	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/rag"
	"github.com/suraj-gautam-pharynxai/TRG-BE/internal/server"
)

const (
	defaultConfigPath = "./configs/config.yaml"
	embeddedStorePath = "./chromemdb"
)

var configPath string

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	// .env is optional; config falls back to the environment for secrets.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "ragserver",
		Short:        "Document ingestion and retrieval-augmented question answering",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to config file")

	root.AddCommand(serveCmd(), ingestCmd(), queryCmd(), deleteCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", configPath).Msg("config file not found, using defaults")
			return config.Default()
		}
		log.Fatal().Err(err).Msg("Error loading config")
	}
	return cfg
}

// buildRAG wires store, embedder and completion client from config. The
// returned closer releases the store connection.
func buildRAG(ctx context.Context, cfg *config.Config) (*rag.RAG, *embedding.Client, func(), error) {
	var store rag.Store
	closer := func() {}

	if cfg.Database.URL != "" {
		sqldb, err := db.ConnectDB(&cfg.Database)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect db: %w", err)
		}
		bundb := db.NewDB(sqldb, cfg.Database.Debug)
		if err := db.InitDB(ctx, bundb, cfg.RAG.VectorSize); err != nil {
			return nil, nil, nil, fmt.Errorf("init db: %w", err)
		}
		store = db.NewStore(bundb)
		closer = func() { _ = bundb.Close() }
	} else {
		log.Warn().Msg("no database url configured, using embedded store")
		ms, err := memstore.New(embeddedStorePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open embedded store: %w", err)
		}
		store = ms
	}

	var embedder *embedding.Client
	var err error
	if cfg.EmbedLLM.Key == "" && cfg.EmbedLLM.BaseURL != "" {
		embedder, err = embedding.NewOllamaClient(&cfg.EmbedLLM)
	} else {
		embedder, err = embedding.NewClient(&cfg.EmbedLLM)
	}
	if err != nil {
		closer()
		return nil, nil, nil, fmt.Errorf("init embedder: %w", err)
	}

	completer, err := llmservice.NewClient(&cfg.InferenceLLM)
	if err != nil {
		closer()
		return nil, nil, nil, fmt.Errorf("init completion client: %w", err)
	}

	return rag.NewRAG(store, embedder, completer, cfg), embedder, closer, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx := cmd.Context()

			r, embedder, closer, err := buildRAG(ctx, cfg)
			if err != nil {
				return err
			}
			defer closer()

			// A provider/store dimension mismatch is a deployment bug;
			// fail here instead of on the first request.
			if cfg.Database.URL != "" {
				if err := embedder.CheckDimension(ctx, cfg.RAG.VectorSize); err != nil {
					return err
				}
			}

			srv := server.New(r)
			log.Info().Str("addr", cfg.Server.Addr).Msg("listening")
			return http.ListenAndServe(cfg.Server.Addr, srv.Routes())
		},
	}
}

func ingestCmd() *cobra.Command {
	var filePath, source string
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a document file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx := cmd.Context()

			data, err := os.ReadFile(filePath)
			if err != nil {
				return err
			}

			r, _, closer, err := buildRAG(ctx, cfg)
			if err != nil {
				return err
			}
			defer closer()

			result, err := r.Ingest(ctx, source, filepath.Base(filePath), data)
			if err != nil {
				return err
			}
			log.Info().
				Int("chunks", result.ChunksInserted).
				Int("snapshots", result.SnapshotsInserted).
				Msg("ingest complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "path to the document file")
	cmd.Flags().StringVar(&source, "source", "", "source key (defaults to the file name)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func queryCmd() *cobra.Command {
	var question, source string
	var k int
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Ask a question against the ingested documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx := cmd.Context()

			r, _, closer, err := buildRAG(ctx, cfg)
			if err != nil {
				return err
			}
			defer closer()

			result, err := r.Query(ctx, question, k, source)
			if err != nil {
				return err
			}

			fmt.Printf("%s\n\n", result.Answer)
			helper.PrettyPrint(result.Contexts)
			return nil
		},
	}
	cmd.Flags().StringVar(&question, "q", "", "question to answer")
	cmd.Flags().StringVar(&source, "source", "", "restrict retrieval to one source")
	cmd.Flags().IntVar(&k, "k", 0, "number of contexts to retrieve")
	_ = cmd.MarkFlagRequired("q")
	return cmd
}

func deleteCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete all chunks and snapshots for a source",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx := cmd.Context()

			r, _, closer, err := buildRAG(ctx, cfg)
			if err != nil {
				return err
			}
			defer closer()

			if err := r.Delete(ctx, source); err != nil {
				return err
			}
			log.Info().Str("source", source).Msg("source deleted")
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "source key to delete")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
