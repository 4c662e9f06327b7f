package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"rag/app/server"
	"rag/config"
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

	embedder, err := model.NewEmbedder(cfg)
	if err != nil {
		log.Fatal("error to create embedder: ", err)
	}

	storer, err := store.New(context.Background(), cfg)
	if err != nil {
		log.Fatal("error to open vector store: ", err)
	}
	defer storer.Close()

	generator := model.NewOllamaGenerator(cfg.OllamaURL, cfg.LLMModel, cfg.GenerateTimeout)

	s := server.NewServer(cfg, embedder, storer, generator)
	go s.Run()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Println("Received shutdown signal, shutting down server...")
	s.Stop()
}

func mustLoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
}
