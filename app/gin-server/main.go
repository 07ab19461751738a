package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/husnainkhadir/sop-generator/config"
	"github.com/husnainkhadir/sop-generator/internal/api/handlers"
	"github.com/husnainkhadir/sop-generator/internal/api/middleware"
	"github.com/husnainkhadir/sop-generator/internal/api/routes"
	"github.com/husnainkhadir/sop-generator/internal/cache"
	"github.com/husnainkhadir/sop-generator/internal/logger"
	"github.com/husnainkhadir/sop-generator/internal/providers/llm"
	"github.com/husnainkhadir/sop-generator/internal/providers/stt"
	mongorepo "github.com/husnainkhadir/sop-generator/internal/repositories/mongo"
	pgrepo "github.com/husnainkhadir/sop-generator/internal/repositories/postgres"
	"github.com/husnainkhadir/sop-generator/internal/services"
	"github.com/husnainkhadir/sop-generator/internal/storage"
	"github.com/husnainkhadir/sop-generator/internal/stream"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	ctx := context.Background()

	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("postgres init failed")
	}
	log.Info("postgres connected")

	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("mongo init failed")
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("mongo index setup failed")
	}
	log.Info("mongo connected")

	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("redis init failed")
	}
	log.Info("redis connected")

	// providers
	sttProvider, err := stt.NewGoogleSpeech(ctx)
	if err != nil {
		log.WithError(err).Fatal("speech client init failed")
	}
	defer sttProvider.Close()

	refiner, err := llm.NewVertexGemini(ctx,
		os.Getenv("GOOGLE_PROJECT_ID"),
		os.Getenv("GOOGLE_LOCATION"),
		os.Getenv("GEMINI_MODEL"))
	if err != nil {
		log.WithError(err).Fatal("vertex client init failed")
	}
	defer refiner.Close()

	bucket := os.Getenv("GCS_BUCKET")
	if bucket == "" {
		log.Fatal("GCS_BUCKET environment variable is not set")
	}
	uploader, err := storage.NewGCSUploader(ctx, bucket)
	if err != nil {
		log.WithError(err).Fatal("gcs client init failed")
	}
	defer uploader.Close()

	// repositories + services
	sopRepo := pgrepo.NewSopRepo(config.PostgresDB)
	stepRepo := pgrepo.NewStepRepo(config.PostgresDB)
	transcriptRepo := mongorepo.NewTranscriptRepo(config.MongoDatabase())

	redisCache := cache.NewRedisCache(config.RedisClient)

	sopSvc := services.NewSopService(sopRepo)
	stepSvc := services.NewStepService(stepRepo, sopRepo)
	transcriptionSvc := services.NewTranscriptionService(sttProvider, refiner, redisCache, log)
	recordingSvc := services.NewRecordingService(uploader, log)
	archive := services.NewTranscriptArchive(transcriptRepo, 24*time.Hour)

	// live transcription registry
	policy := config.StreamPolicy()
	registry := stream.NewRegistry(sttProvider, policy, archive, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Sop:        handlers.NewSopHandler(sopSvc),
		Step:       handlers.NewStepHandler(stepSvc),
		Transcribe: handlers.NewTranscribeHandler(transcriptionSvc, policy.Language),
		Transcript: handlers.NewTranscriptHandler(archive),
		Recording:  handlers.NewRecordingHandler(recordingSvc),
		WS:         handlers.NewWSHandler(registry, log),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
