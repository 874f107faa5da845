package main

import (
	"context"
	"log"
	"os"

	"lexanswer-backend/chunker"
	"lexanswer-backend/citations"
	"lexanswer-backend/embedding"
	"lexanswer-backend/handlers"
	"lexanswer-backend/index"
	"lexanswer-backend/llm"
	"lexanswer-backend/registry"
	"lexanswer-backend/service"
	"lexanswer-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	ctx := context.Background()

	embedder := initEmbedder()
	extractor := citations.NewExtractor()
	chk := chunker.NewChunker(chunker.Config{}, extractor)

	idx, cleanup, err := initIndex(ctx, embedder)
	if err != nil {
		log.Fatal("Failed to initialize index:", err)
	}
	defer cleanup()

	generator, err := initGenerator(ctx)
	if err != nil {
		log.Fatal("Failed to initialize generator:", err)
	}

	citationRegistry := initRegistry(ctx)

	// Initialize services
	ingestService := service.NewIngestService(
		service.IngestWithIndex(idx),
		service.IngestWithChunker(chk),
		service.IngestWithEmbedder(embedder),
	)
	queryService := service.NewQueryService(
		service.QueryWithIndex(idx),
		service.QueryWithGenerator(generator),
	)
	qualityService := service.NewQualityService(
		service.QualityWithExtractor(extractor),
		service.QualityWithRegistry(citationRegistry),
	)

	// Initialize handlers
	documentHandler := handlers.NewDocumentHandler(ingestService)
	queryHandler := handlers.NewQueryHandler(queryService, qualityService)

	// Setup Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		api.POST("/documents", documentHandler.IngestDocument)
		api.DELETE("/documents/:id", documentHandler.DeleteDocument)

		api.POST("/query", queryHandler.Query)
		api.POST("/validate", queryHandler.Validate)
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// initEmbedder picks Gemini embeddings when an API key is configured and
// falls back to the deterministic local embedder otherwise.
func initEmbedder() embedding.Embedder {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set, using local embedder")
		return embedding.NewLocal(0)
	}
	return embedding.NewGemini(apiKey)
}

// initIndex connects the Postgres index when DATABASE_URL is set, otherwise
// runs fully in-memory.
func initIndex(ctx context.Context, embedder embedding.Embedder) (index.Index, func(), error) {
	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		log.Println("Warning: DATABASE_URL not set, using in-memory index")
		return index.NewMemory(embedder), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	// Enable pgvector extension
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		log.Printf("Warning: Failed to create pgvector extension: %v", err)
		log.Println("This may be normal if extension is already installed or requires superuser privileges")
	}

	idx := index.NewPostgres(pool, embedder)
	if err := idx.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	log.Println("Postgres index initialized with pgvector support")
	return idx, pool.Close, nil
}

func initGenerator(ctx context.Context) (llm.Generator, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}

	model := os.Getenv("GEMINI_MODEL")
	var opts []llm.GeminiOption
	if model != "" {
		opts = append(opts, llm.GeminiWithModel(model))
	}

	generator, err := llm.NewGemini(ctx, apiKey, opts...)
	if err != nil {
		return nil, err
	}

	log.Println("Gemini generator initialized")
	return generator, nil
}

// initRegistry loads the curated citation registry from the snapshot store
// when REGISTRY_KEY is configured; otherwise the registry starts empty and
// every answer citation scores as invalid.
func initRegistry(ctx context.Context) *registry.Memory {
	reg := registry.NewMemory()

	key := os.Getenv("REGISTRY_KEY")
	if key == "" {
		log.Println("Warning: REGISTRY_KEY not set, citation registry is empty")
		return reg
	}

	store, err := storage.NewStoreFromEnv()
	if err != nil {
		log.Printf("Warning: Failed to initialize snapshot store: %v", err)
		return reg
	}

	reader, err := store.Get(ctx, key)
	if err != nil {
		log.Printf("Warning: Failed to read citation registry: %v", err)
		return reg
	}
	defer reader.Close()

	count, err := reg.Load(reader)
	if err != nil {
		log.Printf("Warning: Failed to load citation registry: %v", err)
		return reg
	}

	log.Printf("Citation registry loaded with %d references", count)
	return reg
}
