package server

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	platformgrpc "github.com/louisbranch/coursebot/internal/platform/grpc"
)

type fakeBot struct {
	mu      sync.Mutex
	updates chan tgbotapi.Update
	calls   []tgbotapi.Chattable
	stopped bool
}

func newFakeBot() *fakeBot {
	return &fakeBot{updates: make(chan tgbotapi.Update, 8)}
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, c)
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return b.updates
}

func (b *fakeBot) StopReceivingUpdates() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.stopped {
		b.stopped = true
		close(b.updates)
	}
}

func (b *fakeBot) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func testConfig() Config {
	return Config{
		BotToken:      "123:test",
		PublicBaseURL: "https://example.test",
		Locale:        "ru-RU",
		HealthAddr:    "127.0.0.1:0",
		Workers:       2,
		PollTimeout:   time.Second,
	}
}

func TestNewRequiresToken(t *testing.T) {
	cfg := testConfig()
	cfg.BotToken = ""
	if _, err := New(cfg); err == nil {
		t.Fatal("expected missing token error")
	}
}

func TestNewServerRejectsInvalidBaseURL(t *testing.T) {
	cfg := testConfig()
	cfg.PublicBaseURL = "not a url"
	if _, err := newServer(cfg, newFakeBot()); err == nil {
		t.Fatal("expected base url error")
	}
}

func TestServeReportsHealthAndHandlesUpdates(t *testing.T) {
	cfg := testConfig()
	cfg.JournalPath = filepath.Join(t.TempDir(), "journal", "coursebot.db")
	bot := newFakeBot()
	server, err := newServer(cfg, bot)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	addr := server.HealthAddr()
	if addr == "" {
		t.Fatal("expected health listener")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	if err := platformgrpc.WaitForServing(waitCtx, addr, HealthService, nil); err != nil {
		t.Fatalf("wait for serving: %v", err)
	}

	bot.updates <- tgbotapi.Update{
		UpdateID: 1,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    &tgbotapi.User{ID: 42},
			Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: 42}},
			Data:    "course_steps",
		},
	}
	deadline := time.Now().Add(5 * time.Second)
	for bot.callCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := bot.callCount(); got != 2 {
		t.Fatalf("bot calls = %d, want ack and edit", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServeWithoutHealthEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.HealthAddr = ""
	server, err := newServer(cfg, newFakeBot())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if server.HealthAddr() != "" {
		t.Fatal("expected health endpoint to be disabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := server.Serve(ctx); err != nil {
		t.Fatalf("serve: %v", err)
	}
}
