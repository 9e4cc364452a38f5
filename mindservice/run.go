// Package mindservice boots the MindOcean HTTP service: persona storage,
// LLM gateway, route wiring, health checking, and graceful shutdown.
package mindservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/mindocean/mindocean/internal/api"
	"github.com/mindocean/mindocean/internal/api/recovery"
	"github.com/mindocean/mindocean/internal/auth"
	"github.com/mindocean/mindocean/internal/config"
	"github.com/mindocean/mindocean/internal/factory"
	"github.com/mindocean/mindocean/internal/health"
	"github.com/mindocean/mindocean/internal/llm"
	"github.com/mindocean/mindocean/internal/logger"
	"github.com/mindocean/mindocean/internal/services"
	"github.com/mindocean/mindocean/internal/store"
)

// Run starts the MindOcean HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("mindocean")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("llm_base_url", cfg.LLMBaseURL).
		Str("llm_model", cfg.LLMModel).
		Msg("MindOcean service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	// Initialize dependencies (store, LLM gateway)
	st, gateway, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}

	// Build router
	router := buildRouter(st, gateway, cfg, log)

	// Start health checkers and bind service health
	svcHealth := startHealthCheckers(ctx, cfg, log, st, gateway)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	// HTTP server and serve
	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs required components and enforces fail-fast on missing deps.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, *llm.Gateway, error) {
	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, nil, err
	}

	gateway := llm.NewGateway(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMMaxTokens)
	return st, gateway, nil
}

// newAuthorizer resolves the token authorizer from configuration.
// An empty token list falls back to the local development authorizer.
func newAuthorizer(cfg *config.Config, log zerolog.Logger) auth.Authorizer {
	if cfg.AuthTokens == "" {
		log.Warn().Msg("MINDOCEAN_AUTH_TOKENS not set, using local development authorizer")
		return auth.NewDevAuthorizer()
	}
	return auth.NewStaticAuthorizer(cfg.AuthTokens)
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(st store.Store, gateway *llm.Gateway, cfg *config.Config, log zerolog.Logger) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)
	root.Use(api.AuthMiddleware(newAuthorizer(cfg, log)))

	// Profile
	profileSvc := services.NewProfileService(st)
	profile := api.NewProfileHandler(profileSvc)
	root.HandleFunc("/api/profile", api.RequireUser(profile.GetProfile)).Methods("GET")
	root.HandleFunc("/api/profile", api.RequireUser(profile.SaveProfile)).Methods("PUT")
	root.HandleFunc("/api/profile/completeness", api.RequireUser(profile.GetCompleteness)).Methods("GET")
	root.HandleFunc("/api/profile/stats", api.RequireUser(profile.GetStats)).Methods("GET")

	// Memories
	memorySvc := services.NewMemoryService(st, gateway)
	memory := api.NewMemoryHandler(memorySvc)
	root.HandleFunc("/api/memories", api.RequireUser(memory.ListMemories)).Methods("GET")
	root.HandleFunc("/api/memories", api.RequireUser(memory.AddMemory)).Methods("POST")
	root.HandleFunc("/api/memories/search", api.RequireUser(memory.SearchMemories)).Methods("GET")
	root.HandleFunc("/api/memories/prompt", api.RequireUser(memory.GetPrompt)).Methods("GET")
	root.HandleFunc("/api/memories/import", api.RequireUser(memory.ImportMemories)).Methods("POST")
	root.HandleFunc("/api/memories/{memoryId}", api.RequireUser(memory.DeleteMemory)).Methods("DELETE")

	// Assessments
	assessmentSvc := services.NewAssessmentService(st)
	assessment := api.NewAssessmentHandler(assessmentSvc)
	root.HandleFunc("/api/assessments", api.RequireUser(assessment.ListAssessments)).Methods("GET")
	root.HandleFunc("/api/assessments", api.RequireUser(assessment.SaveAssessment)).Methods("POST")

	// Mind entity (owner side and public projections)
	personaSvc := services.NewPersonaService(st, gateway)
	persona := api.NewPersonaHandler(personaSvc)
	root.HandleFunc("/api/entity", api.RequireUser(persona.GetEntity)).Methods("GET")
	root.HandleFunc("/api/entity/synthesize", api.RequireUser(persona.Synthesize)).Methods("POST")
	root.HandleFunc("/api/entity/settings", api.RequireUser(persona.UpdateSettings)).Methods("PATCH")
	root.HandleFunc("/api/entity/share-link", api.RequireUser(persona.GenerateShareLink)).Methods("POST")
	root.HandleFunc("/api/minds/slug/{slug}", persona.GetMindBySlug).Methods("GET")
	root.HandleFunc("/api/minds/token/{token}", persona.GetMindByToken).Methods("GET")
	root.HandleFunc("/api/minds/{personaId}", persona.GetMindByID).Methods("GET")
	root.HandleFunc("/api/ocean", persona.BrowseOcean).Methods("GET")

	// Chat with a mind (public, visitor identity optional)
	chatSvc := services.NewChatService(st, gateway)
	chat := api.NewChatHandler(chatSvc)
	root.HandleFunc("/api/chat/conversations", chat.StartConversation).Methods("POST")
	root.HandleFunc("/api/chat/conversations/{conversationId}/messages", chat.SendMessage).Methods("POST")
	root.HandleFunc("/api/chat/conversations/{conversationId}/messages", chat.GetHistory).Methods("GET")

	// Collective deliberation
	collectiveSvc := services.NewCollectiveService(st, gateway, log)
	collective := api.NewCollectiveHandler(collectiveSvc)
	root.HandleFunc("/api/collective/minds", collective.GetMinds).Methods("GET")
	root.HandleFunc("/api/collective/consult", collective.Consult).Methods("POST")

	// Health
	healthHandler := api.NewHealthHandler()
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	return root
}

// startHealthCheckers starts component checkers and service-level aggregator; binds health.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, gateway *llm.Gateway) *health.ServiceHealthChecker {
	var checkers []health.HealthChecker
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	if p, ok := st.(health.HealthPinger); ok {
		storeChecker := health.NewPingChecker("store", p, log, probeTimeout)
		go storeChecker.Start(ctx, interval)
		checkers = append(checkers, storeChecker)
	}

	llmChecker := health.NewPingChecker("llm", gateway, log, probeTimeout)
	go llmChecker.Start(ctx, interval)
	checkers = append(checkers, llmChecker)

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	// Checkers start unhealthy and need at least one probe cycle to flip
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
