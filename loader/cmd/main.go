package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"rag/config"
	"rag/loader/service"
	"rag/model"
	"rag/store"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	ctx := context.Background()

	embedder, err := model.NewEmbedder(cfg)
	if err != nil {
		log.Fatal("error to create embedder: ", err)
	}

	storer, err := store.New(ctx, cfg)
	if err != nil {
		log.Fatal("error to open vector store: ", err)
	}
	defer storer.Close()

	stats, err := service.New(cfg, embedder, storer).Run(ctx)
	if err != nil {
		log.Fatal("ingestion run failed: ", err)
	}

	fmt.Printf("files processed: %d, files skipped: %d, chunks indexed: %d (%s)\n",
		stats.FilesProcessed, stats.FilesSkipped, stats.ChunksIndexed, stats.Duration)
}

func mustLoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
}
