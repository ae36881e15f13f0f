// Package telegram adapts Bot API updates to the course router and delivers
// its renders back to the chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/coursebot/internal/platform/errors"
	"github.com/louisbranch/coursebot/internal/services/coursebot/router"
	"github.com/louisbranch/coursebot/internal/services/coursebot/storage"
)

const (
	tracerName = "github.com/louisbranch/coursebot/internal/services/coursebot/transport/telegram"

	startCommand     = "start"
	defaultWorkers   = 4
	recordTimeout    = 3 * time.Second
	notModifiedError = "message is not modified"
)

// BotAPI is the subset of *tgbotapi.BotAPI the dispatcher calls.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handler renders decoded events. *router.Router satisfies it.
type Handler interface {
	Handle(ev router.Event, sender router.Sender) (router.Render, error)
}

// HandoffRecorder journals delivered payment links.
type HandoffRecorder interface {
	RecordHandoff(ctx context.Context, record storage.HandoffRecord) (storage.HandoffRecord, error)
}

// Config configures a Dispatcher.
type Config struct {
	Bot      BotAPI
	Handler  Handler
	Recorder HandoffRecorder
	Workers  int
}

// Dispatcher consumes Bot API updates. Updates are independent of each other,
// so any number may be handled concurrently.
type Dispatcher struct {
	bot      BotAPI
	handler  Handler
	recorder HandoffRecorder
	workers  int
	tracer   trace.Tracer
}

// NewDispatcher validates cfg and builds a dispatcher.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if cfg.Bot == nil {
		return nil, errors.New("telegram bot is required")
	}
	if cfg.Handler == nil {
		return nil, errors.New("event handler is required")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Dispatcher{
		bot:      cfg.Bot,
		handler:  cfg.Handler,
		recorder: cfg.Recorder,
		workers:  workers,
		tracer:   otel.Tracer(tracerName),
	}, nil
}

// Serve handles updates with a fixed worker pool until ctx ends or updates
// is closed. Updates already taken by a worker finish before Serve returns.
func (d *Dispatcher) Serve(ctx context.Context, updates <-chan tgbotapi.Update) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if updates == nil {
		return errors.New("update channel is required")
	}

	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case update, ok := <-updates:
					if !ok {
						return
					}
					d.HandleUpdate(ctx, update)
				}
			}
		}()
	}
	wg.Wait()
	return nil
}

// HandleUpdate processes one update. Faults are logged and never escape, so
// one bad update cannot stop other users from being served.
func (d *Dispatcher) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	ctx, span := d.tracer.Start(ctx, "telegram.update",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attribute.Int("telegram.update_id", update.UpdateID)),
	)
	defer span.End()
	defer func() {
		if recovered := recover(); recovered != nil {
			err := fmt.Errorf("panic: %v", recovered)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			log.Printf("telegram: update %d: recovered %v", update.UpdateID, recovered)
		}
	}()

	var err error
	switch {
	case update.CallbackQuery != nil:
		err = d.handleCallback(ctx, span, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand() && update.Message.Command() == startCommand:
		err = d.handleStart(ctx, span, update.Message)
	default:
		return
	}
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, string(apperrors.GetCode(err)))
	log.Printf("telegram: update %d: %v", update.UpdateID, err)
}

func (d *Dispatcher) handleStart(ctx context.Context, span trace.Span, msg *tgbotapi.Message) error {
	if msg.Chat == nil {
		return nil
	}
	span.SetAttributes(attribute.String("coursebot.event", router.EventStart.String()))
	render, err := d.handler.Handle(router.StartEvent(), senderOf(msg.From))
	if err != nil {
		return fmt.Errorf("render start: %w", err)
	}
	span.SetAttributes(attribute.String("coursebot.view", render.View.String()))
	if _, err := d.bot.Send(newMessage(msg.Chat.ID, render)); err != nil {
		return fmt.Errorf("send list: %w", err)
	}
	return nil
}

func (d *Dispatcher) handleCallback(ctx context.Context, span trace.Span, query *tgbotapi.CallbackQuery) error {
	// Clear the client's loading indicator before doing any work.
	if _, err := d.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("telegram: answer callback %s: %v", query.ID, err)
	}

	ev := router.ParsePayload(query.Data)
	span.SetAttributes(attribute.String("coursebot.event", ev.Kind.String()))
	if ev.CourseID != "" {
		span.SetAttributes(attribute.String("coursebot.course_id", ev.CourseID))
	}

	render, err := d.handler.Handle(ev, senderOf(query.From))
	if errors.Is(err, router.ErrUnrecognizedEvent) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", ev.Kind, err)
	}
	span.SetAttributes(attribute.String("coursebot.view", render.View.String()))

	if _, err := d.bot.Request(editMessage(query, render)); err != nil {
		if isNotModified(err) {
			return nil
		}
		return fmt.Errorf("edit %s view: %w", render.View, err)
	}

	if render.View == router.ViewDetail {
		d.recordHandoff(ctx, query, render)
	}
	return nil
}

func (d *Dispatcher) recordHandoff(ctx context.Context, query *tgbotapi.CallbackQuery, render router.Render) {
	if d.recorder == nil {
		return
	}
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	_, err := d.recorder.RecordHandoff(recordCtx, storage.HandoffRecord{
		CourseID:       render.CourseID,
		TelegramUserID: senderOf(query.From).ID,
		URL:            render.HandoffURL(),
	})
	if err != nil {
		log.Printf("telegram: journal handoff course=%q: %v", render.CourseID, err)
	}
}

// senderOf returns the authenticated sender. User-supplied text is never used.
func senderOf(user *tgbotapi.User) router.Sender {
	if user == nil {
		return router.Sender{}
	}
	return router.Sender{ID: user.ID}
}

func isNotModified(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return strings.Contains(apiErr.Message, notModifiedError)
	}
	return strings.Contains(err.Error(), notModifiedError)
}
