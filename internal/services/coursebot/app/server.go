// Package server wires the course bot runtime: Telegram polling, the router,
// the optional handoff journal and the gRPC health endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	i18ncatalog "github.com/louisbranch/coursebot/internal/platform/i18n/catalog"
	"github.com/louisbranch/coursebot/internal/platform/timeouts"
	"github.com/louisbranch/coursebot/internal/services/coursebot/catalog"
	"github.com/louisbranch/coursebot/internal/services/coursebot/router"
	botsqlite "github.com/louisbranch/coursebot/internal/services/coursebot/storage/sqlite"
	"github.com/louisbranch/coursebot/internal/services/coursebot/transport/telegram"
)

// HealthService is the service name reported by the health endpoint.
const HealthService = "coursebot.v1.CourseBot"

// Config defines the inputs for the bot runtime.
type Config struct {
	BotToken      string
	PublicBaseURL string
	Locale        string
	HealthAddr    string
	JournalPath   string
	ProxyURL      string
	Workers       int
	PollTimeout   time.Duration
}

// botClient is the Bot API surface used by the runtime. *tgbotapi.BotAPI
// satisfies it.
type botClient interface {
	telegram.BotAPI
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Server hosts the Telegram poll loop and the health endpoint.
type Server struct {
	bot         botClient
	dispatcher  *telegram.Dispatcher
	pollTimeout time.Duration
	listener    net.Listener
	grpcServer  *grpc.Server
	health      *health.Server
	store       *botsqlite.Store
}

// New authenticates against the Bot API and builds a server.
func New(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.BotToken) == "" {
		return nil, errors.New("bot token is required")
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 60 * time.Second
	}
	httpClient, err := telegram.NewHTTPClient(cfg.ProxyURL, timeouts.TelegramRequest+cfg.PollTimeout)
	if err != nil {
		return nil, err
	}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("authenticate telegram bot: %w", err)
	}
	log.Printf("authorized telegram bot @%s", bot.Self.UserName)
	return newServer(cfg, bot)
}

func newServer(cfg Config, bot botClient) (*Server, error) {
	if bot == nil {
		return nil, errors.New("telegram bot is required")
	}

	bundle, err := i18ncatalog.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("load chat copy: %w", err)
	}
	printer, locale := bundle.Printer(cfg.Locale)
	if requested := strings.TrimSpace(cfg.Locale); requested != "" && requested != locale {
		log.Printf("locale %q not available, using %s", requested, locale)
	}

	courseRouter, err := router.New(catalog.Default(), router.Options{
		BaseURL: cfg.PublicBaseURL,
		Printer: printer,
	})
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	server := &Server{bot: bot, pollTimeout: cfg.PollTimeout}
	if server.pollTimeout <= 0 {
		server.pollTimeout = 60 * time.Second
	}

	var recorder telegram.HandoffRecorder
	if path := strings.TrimSpace(cfg.JournalPath); path != "" {
		store, err := openJournal(path)
		if err != nil {
			return nil, err
		}
		server.store = store
		recorder = store
	}

	dispatcher, err := telegram.NewDispatcher(telegram.Config{
		Bot:      bot,
		Handler:  courseRouter,
		Recorder: recorder,
		Workers:  cfg.Workers,
	})
	if err != nil {
		server.Close()
		return nil, err
	}
	server.dispatcher = dispatcher

	if addr := strings.TrimSpace(cfg.HealthAddr); addr != "" {
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			server.Close()
			return nil, fmt.Errorf("listen on %s: %w", addr, err)
		}
		server.listener = listener
		server.grpcServer = grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
		server.health = health.NewServer()
		grpc_health_v1.RegisterHealthServer(server.grpcServer, server.health)
		server.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		server.health.SetServingStatus(HealthService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}

	return server, nil
}

// HealthAddr returns the health listener address, or "" when disabled.
func (s *Server) HealthAddr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a bot until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return fmt.Errorf("init coursebot: %w", err)
	}
	return server.Serve(ctx)
}

// Serve polls Telegram and serves health checks until ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	defer s.Close()

	serveErr := make(chan error, 1)
	if s.grpcServer != nil {
		log.Printf("health server listening at %v", s.listener.Addr())
		go func() {
			serveErr <- s.grpcServer.Serve(s.listener)
		}()
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = int(s.pollTimeout / time.Second)
	updateConfig.AllowedUpdates = []string{"message", "callback_query"}
	updates := s.bot.GetUpdatesChan(updateConfig)

	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		if err := s.dispatcher.Serve(dispatchCtx, updates); err != nil {
			log.Printf("dispatch updates: %v", err)
		}
	}()
	s.setServing(true)
	log.Printf("coursebot polling for updates")

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
		if errors.Is(err, grpc.ErrServerStopped) {
			err = nil
		}
		if err != nil {
			err = fmt.Errorf("serve health: %w", err)
		}
	}

	s.setServing(false)
	s.bot.StopReceivingUpdates()
	stopDispatch()
	select {
	case <-dispatchDone:
	case <-time.After(timeouts.Shutdown):
		log.Printf("coursebot: in-flight updates did not finish within %v", timeouts.Shutdown)
	}
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
	return err
}

func (s *Server) setServing(serving bool) {
	if s.health == nil {
		return
	}
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(HealthService, status)
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close handoff journal: %v", err)
		}
		s.store = nil
	}
}

func openJournal(path string) (*botsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}
	store, err := botsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open handoff journal: %w", err)
	}
	return store, nil
}
