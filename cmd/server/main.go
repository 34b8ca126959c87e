package main

import (
	"context"
	"log"
	"net/http"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/wojak-labs/meme-rag/config"
	"github.com/wojak-labs/meme-rag/controller"
	"github.com/wojak-labs/meme-rag/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	if err := cfg.RequireTextGen(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	// Create Chroma client using the v2 API
	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}()

	redCollection, err := getOrCreateCollection(chromaClient, cfg.RedCollection)
	if err != nil {
		log.Fatalf("FATAL: Failed to get or create %s collection: %v", cfg.RedCollection, err)
	}
	blueCollection, err := getOrCreateCollection(chromaClient, cfg.BlueCollection)
	if err != nil {
		log.Fatalf("FATAL: Failed to get or create %s collection: %v", cfg.BlueCollection, err)
	}

	completionClient := openai.NewClient(
		option.WithAPIKey(cfg.TextGenAPIKey),
		option.WithBaseURL(cfg.TextGenBaseURL),
	)

	cache, err := services.NewPromptCache(services.DefaultCacheSize)
	if err != nil {
		log.Fatalf("FATAL: Failed to create prompt cache: %v", err)
	}

	retriever := services.NewChromaRetriever(redCollection, blueCollection)
	generator := services.NewTextGenerator(completionClient)
	ragService := services.NewRAGService(retriever, generator, cache)
	memeGenerator := services.NewGlifClient(httpClient, cfg.GlifEndpoint, cfg.GlifAPIKeys)
	ragController := controller.NewRAGController(ragService, memeGenerator)

	router := gin.Default()

	// CORS middleware so the frontend can call from another origin
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "RAG meme API",
			"version": "1.0.0",
		})
	})

	query := router.Group("/query")
	{
		query.POST("/text", ragController.QueryText)   // RAG comparison per side
		query.POST("/image", ragController.QueryImage) // meme from the comparison
	}

	log.Printf("Backend server starting on http://localhost:%s", cfg.Port)
	log.Printf("  POST http://localhost:%s/query/text", cfg.Port)
	log.Printf("  POST http://localhost:%s/query/image", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}

// getOrCreateCollection makes sure a side's collection exists before
// the first request needs it.
func getOrCreateCollection(client chromago.Client, collectionName string) (chromago.Collection, error) {
	ctx := context.Background()

	log.Printf("Getting or creating collection '%s'...", collectionName)
	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "campaign policy summaries"),
				chromago.NewStringAttribute("created_by", "rag_service"),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	return collection, nil
}
