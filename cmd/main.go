package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/negroni"

	"document-themes/internal/config"
	"document-themes/internal/embedding"
	"document-themes/internal/helper"
	"document-themes/internal/llm"
	"document-themes/internal/rag"
	"document-themes/internal/server"
	"document-themes/internal/store"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	chunkStore := buildStore(cfg)

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	llmClient, err := llm.NewClient(&cfg.InferenceLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing LLM client")
	}

	if err := helper.CreateFolder(cfg.Server.UploadDir); err != nil {
		log.Fatal().Err(err).Msg("Error creating upload folder")
	}

	pipeline := rag.NewPipeline(chunkStore, embedder, llmClient, cfg)
	srv := server.New(pipeline, cfg.Server.UploadDir)

	n := negroni.New(negroni.NewRecovery(), negroni.NewLogger())
	n.UseHandler(srv.Routes())

	httpSrv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     n,
		IdleTimeout: time.Minute,
		ReadTimeout: 30 * time.Second,
		// Per-chunk model calls run serially within one query, so the
		// write timeout has to cover the whole answer list.
		WriteTimeout: 10 * time.Minute,
	}

	log.Info().Msgf("Listening on :%s", cfg.Server.Port)
	if err := httpSrv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func buildStore(cfg *config.Config) store.Store {
	switch cfg.Store.Backend {
	case "postgres":
		pg, err := store.NewPGStore(cfg.Store.DSN, cfg.RAG.VectorSize, cfg.Store.Debug)
		if err != nil {
			log.Fatal().Err(err).Msg("Error creating postgres store")
		}
		if err := pg.Init(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Error initializing postgres store")
		}
		return pg
	case "chromem", "":
		if !cfg.Store.InMemory {
			if err := helper.CreateFolder(cfg.Store.Path); err != nil {
				log.Fatal().Err(err).Msg("Error creating store folder")
			}
		}
		s, err := store.NewChromemStore(cfg.Store.Path, cfg.Store.InMemory)
		if err != nil {
			log.Fatal().Err(err).Msg("Error creating vector store")
		}
		return s
	default:
		log.Fatal().Msgf("Unknown store backend: %s", cfg.Store.Backend)
		return nil
	}
}
