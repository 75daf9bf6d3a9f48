package main

import (
	"errors"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/kacperborowieckb/gen-csv/shared/llm"
	"github.com/kacperborowieckb/gen-csv/shared/messaging"
	"github.com/kacperborowieckb/gen-csv/shared/synth"
	"github.com/kacperborowieckb/gen-csv/utils/health"
	"github.com/kacperborowieckb/gen-csv/utils/metrics"
	"github.com/kacperborowieckb/gen-csv/utils/shutdown"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	systemPrompt, err := synth.LoadSystemPrompt(cfg.SystemPromptVersion)
	if err != nil {
		log.Fatalf("Failed to load system prompt: %v", err)
	}
	log.Printf("Using system prompt %s", systemPrompt.Version)

	if cfg.APIKey == "" {
		log.Println("API_KEY is not set; generation requests will be rejected")
	}

	var cleanups []func()
	var publisher synth.EventPublisher
	if cfg.AMQPURL != "" {
		mq, err := messaging.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		cleanups = append(cleanups, mq.Close)

		if err := mq.SetupAppTopology(); err != nil {
			log.Fatalf("Failed to set up RabbitMQ topology: %v", err)
		}
		publisher = mq
	}

	svc := synth.NewService(synth.Config{
		APIKey:        cfg.APIKey,
		SystemPrompt:  systemPrompt,
		Timeout:       cfg.GenerationTimeout,
		MaxConcurrent: cfg.MaxConcurrent,
	}, llm.Loader(llm.Config{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
		Verify:   cfg.VerifyModel,
	}), publisher)

	s := newGeneratorServer(svc, cfg)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: s.routes(cfg.GenerationTimeout + 30*time.Second)}

	go func() {
		log.Printf("generator service listening on %s (provider: %s)", srv.Addr, cfg.Provider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	shutdown.WaitForShutdown(srv, 5*time.Second, cleanups...)
}

func (s *generatorServer) routes(timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", health.Handler("generator"))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/", s.handleIndex)
	r.Post("/", s.handleFormSubmit)
	r.Post("/api/generate", s.handleGenerate)

	return r
}
