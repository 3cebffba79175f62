package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/bedrockchat/auth"
	"github.com/a-h/bedrockchat/bedrock"
	"github.com/a-h/bedrockchat/catalog"
	chatpost "github.com/a-h/bedrockchat/handlers/chat/post"
	indexget "github.com/a-h/bedrockchat/handlers/index/get"
	modelsget "github.com/a-h/bedrockchat/handlers/models/get"
	"github.com/rs/cors"
	"github.com/tmc/langchaingo/llms"
)

type ServeCommand struct {
	ListenAddr     string `help:"The address to listen on." env:"LISTEN_ADDR" default:"localhost:9020"`
	Region         string `help:"The AWS region of the Bedrock endpoint." env:"AWS_REGION" default:"us-east-1"`
	DefaultModel   string `help:"The model used when a request doesn't specify one." env:"DEFAULT_MODEL" default:"anthropic.claude-3-haiku-20240307-v1:0"`
	ModelsFile     string `help:"A YAML file that replaces the built-in model catalog." env:"MODELS_FILE" default:""`
	MaxUploadBytes int64  `help:"The maximum size of a chat request body, including attachments." env:"MAX_UPLOAD_BYTES" default:"33554432"`
	APIKeysFile    string `help:"The file containing a JSON map of API keys to usernames. Authentication is disabled if empty." env:"API_KEYS_FILE" default:""`
	TLSCertFile    string `help:"The TLS certificate file." env:"TLS_CERT_FILE" default:""`
	TLSKeyFile     string `help:"The TLS key file." env:"TLS_KEY_FILE" default:""`
	LogLevel       string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func loadCatalog(modelsFile string) (*catalog.Catalog, error) {
	if modelsFile == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(modelsFile)
}

func newMux(log *slog.Logger, models *catalog.Catalog, llm llms.Model, maxUploadBytes int64) *http.ServeMux {
	mux := http.NewServeMux()

	// Registered without a method so that other methods get a JSON 405.
	mux.Handle("/api/chat", chatpost.New(log, llm, maxUploadBytes))
	mux.Handle("GET /api/models", modelsget.New(log, models))
	mux.Handle("GET /{$}", indexget.New())

	return mux
}

func (c ServeCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	models, err := loadCatalog(c.ModelsFile)
	if err != nil {
		return fmt.Errorf("failed to load model catalog: %w", err)
	}
	if _, ok := models.Get(c.DefaultModel); !ok {
		return fmt.Errorf("default model %q is not in the model catalog", c.DefaultModel)
	}
	log.Info("loaded model catalog", slog.Int("models", len(models.Models())), slog.String("default", c.DefaultModel))

	log.Info("creating Bedrock client", slog.String("region", c.Region))
	brc, err := bedrock.NewClient(ctx, c.Region)
	if err != nil {
		return fmt.Errorf("failed to create Bedrock client: %w", err)
	}
	llm := bedrock.New(brc, models, c.DefaultModel)

	var handler http.Handler = newMux(log, models, llm, c.MaxUploadBytes)
	if c.APIKeysFile != "" {
		apiKeyToUserName, err := auth.LoadFromFile(c.APIKeysFile)
		if err != nil {
			return fmt.Errorf("failed to load API keys: %w", err)
		}
		handler = auth.New(apiKeyToUserName, handler)
	} else {
		log.Warn("API keys file not set, authentication is disabled")
	}
	handler = cors.AllowAll().Handler(handler)

	log.Info("Listening", slog.String("addr", c.ListenAddr))
	s := &http.Server{
		Addr:    c.ListenAddr,
		Handler: handler,
	}
	if c.TLSCertFile != "" && c.TLSKeyFile != "" {
		log.Info("Enabling TLS mode")
		var cert tls.Certificate
		cert, err = tls.LoadX509KeyPair(c.TLSCertFile, c.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load cert: %w", err)
		}
		s.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
		return s.ListenAndServeTLS(c.TLSCertFile, c.TLSKeyFile)
	}
	return s.ListenAndServe()
}
