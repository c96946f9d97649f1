package app

import (
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/agent"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/auth"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/llm"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/repo"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/services"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/webhook"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/whatsapp"
)

// Services holds all application services
type Services struct {
	DB          *gorm.DB
	AuthService *auth.Service

	MessagingRepo *repo.MessagingRepository
	SalesRepo     *repo.SalesRepository

	ProductService  *services.ProductService
	CartService     *services.CartService
	ProposalService *services.ProposalService
	Embedding       *services.EmbeddingService
	Storage         *services.StorageService

	Classifier *agent.ProfileClassifier
	Engine     *agent.Engine

	WhatsAppClient *whatsapp.Client
	WebhookHandler *webhook.Handler
}

// NewServices creates a new services container
func NewServices(db *gorm.DB) *Services {
	authService := auth.NewService(db)

	messagingRepo := repo.NewMessagingRepository(db)
	salesRepo := repo.NewSalesRepository(db)

	productService := services.NewProductService(db)
	cartService := services.NewCartService(db)
	candidateService := services.NewCandidateService(db, productService, cartService)
	proposalService := services.NewProposalService(db)

	// Resolved Cloud API media URLs only answer requests carrying the same
	// access token that resolved them.
	waToken := os.Getenv("WHATSAPP_ACCESS_TOKEN")

	storage := services.NewStorageService(services.StorageConfig{
		Endpoint:   os.Getenv("S3_ENDPOINT"),
		AccessKey:  os.Getenv("S3_ACCESS_KEY"),
		SecretKey:  os.Getenv("S3_SECRET_KEY"),
		Bucket:     os.Getenv("S3_BUCKET"),
		MediaToken: waToken,
	})

	// Embeddings and memory search are optional: without OpenAI/Qdrant the
	// agent still answers, it just stops accumulating long-term memory.
	var embedding *services.EmbeddingService
	openaiAPIKey := os.Getenv("OPENAI_API_KEY")
	if openaiAPIKey != "" {
		qdrantURL := os.Getenv("QDRANT_URL")
		if qdrantURL == "" {
			qdrantURL = "localhost:6334"
		}
		var err error
		embedding, err = services.NewEmbeddingService(openaiAPIKey, qdrantURL, os.Getenv("QDRANT_API_KEY"))
		if err != nil {
			log.Warn().Err(err).Msg("Embedding service unavailable, memory disabled")
			embedding = nil
		}
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, memory disabled")
	}

	replyClient := llm.NewReplyClient(
		os.Getenv("GEMINI_API_KEY"),
		os.Getenv("GEMINI_BASE_URL"),
		os.Getenv("GEMINI_MODEL"),
	)
	rephraseClient := llm.NewRephraseClient(
		os.Getenv("DEEPSEEK_API_KEY"),
		os.Getenv("DEEPSEEK_BASE_URL"),
		os.Getenv("DEEPSEEK_MODEL"),
	)

	var memory *agent.MemoryWriter
	var recall agent.MemoryRecall
	if embedding != nil {
		memory = agent.NewMemoryWriter(db, embedding, embedding)
		recall = embedding
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	classifier := agent.NewProfileClassifier(salesRepo)
	qualifier := agent.NewQualifier(db, rephraseClient, memory, rng)
	responder := agent.NewResponder(replyClient)
	engine := agent.NewEngine(db, classifier, qualifier, responder, memory, recall, candidateService, cartService, proposalService)

	var sender *whatsapp.Client
	var media *whatsapp.MediaClient
	waBaseURL := os.Getenv("WHATSAPP_API_URL")
	waPhoneID := os.Getenv("WHATSAPP_PHONE_NUMBER_ID")
	if waBaseURL == "" {
		waBaseURL = "https://graph.facebook.com/v19.0"
	}
	if waToken != "" && waPhoneID != "" {
		sender = whatsapp.NewClient(waBaseURL, waToken, waPhoneID, db)
		media = whatsapp.NewMediaClient(waBaseURL, waToken)
	} else {
		log.Warn().Msg("WhatsApp credentials not set, outbound delivery disabled")
	}

	transcriber := llm.NewAudioTranscriber(openaiAPIKey, os.Getenv("MEDIA_DECRYPT_SERVICE_URL"), waToken)

	var mediaResolver webhook.MediaResolver
	if media != nil {
		mediaResolver = media
	}
	webhookHandler := webhook.NewHandler(
		db,
		messagingRepo,
		engine,
		transcriber,
		storage,
		sender,
		mediaResolver,
		os.Getenv("WHATSAPP_VERIFY_TOKEN"),
	)

	return &Services{
		DB:              db,
		AuthService:     authService,
		MessagingRepo:   messagingRepo,
		SalesRepo:       salesRepo,
		ProductService:  productService,
		CartService:     cartService,
		ProposalService: proposalService,
		Embedding:       embedding,
		Storage:         storage,
		Classifier:      classifier,
		Engine:          engine,
		WhatsAppClient:  sender,
		WebhookHandler:  webhookHandler,
	}
}
