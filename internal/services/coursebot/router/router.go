// Package router maps decoded chat events to list and detail renders.
//
// The router keeps no per-user state: every render is derived from the event
// payload and the sender, so repeating an event repeats the render exactly.
package router

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"golang.org/x/text/message"

	apperrors "github.com/louisbranch/coursebot/internal/platform/errors"
	"github.com/louisbranch/coursebot/internal/services/coursebot/catalog"
)

// Message keys for the localized chat copy.
const (
	msgGreeting    = "bot.greeting"
	msgDetailTitle = "bot.detail.title"
	msgDetailPrice = "bot.detail.price"
	msgDetailCTA   = "bot.detail.cta"
	msgButtonPay   = "bot.button.pay"
	msgButtonBack  = "bot.button.back"
)

// ErrUnrecognizedEvent reports an event the router does not handle.
// Transports ignore it without logging.
var ErrUnrecognizedEvent = apperrors.New(apperrors.CodeEventUnrecognized, "unrecognized event")

// Printer formats localized messages by key. *message.Printer satisfies it.
type Printer interface {
	Sprintf(key message.Reference, a ...any) string
}

// Sender is the authenticated identity of whoever raised the event.
type Sender struct {
	ID int64
}

// Options configures a Router.
type Options struct {
	// BaseURL is the public origin of the payment service.
	BaseURL string
	// Printer supplies the localized chat copy.
	Printer Printer
}

// Router renders catalog views. It is safe for concurrent use.
type Router struct {
	registry *catalog.Registry
	baseURL  string
	printer  Printer
}

// New builds a router over registry.
func New(registry *catalog.Registry, opts Options) (*Router, error) {
	if registry == nil || registry.Len() == 0 {
		return nil, errors.New("course registry is required")
	}
	if opts.Printer == nil {
		return nil, errors.New("printer is required")
	}
	base, err := ParseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	return &Router{
		registry: registry,
		baseURL:  base.String(),
		printer:  opts.Printer,
	}, nil
}

// Handle resolves ev from sender into a render.
//
// It returns ErrUnrecognizedEvent for events it does not handle, and a
// COURSE_NOT_FOUND error when a selected id is missing from the catalog,
// which means the deployed buttons and catalog disagree.
func (r *Router) Handle(ev Event, sender Sender) (Render, error) {
	switch ev.Kind {
	case EventStart, EventBack:
		return r.listView(), nil
	case EventSelectCourse:
		return r.detailView(ev.CourseID, sender)
	default:
		return Render{}, ErrUnrecognizedEvent
	}
}

func (r *Router) listView() Render {
	offerings := r.registry.All()
	rows := make([][]Button, 0, len(offerings))
	for _, offering := range offerings {
		label := offering.ButtonLabel
		if label == "" {
			label = offering.Title
		}
		rows = append(rows, []Button{{Label: label, Payload: CoursePayload(offering.ID)}})
	}
	return Render{
		View: ViewList,
		Text: r.printer.Sprintf(msgGreeting),
		Rows: rows,
	}
}

func (r *Router) detailView(courseID string, sender Sender) (Render, error) {
	offering, err := r.registry.Lookup(courseID)
	if err != nil {
		return Render{}, fmt.Errorf("select course: %w", err)
	}
	if sender.ID <= 0 {
		return Render{}, apperrors.WithMetadata(apperrors.CodeSenderMissing,
			"select course without authenticated sender",
			map[string]string{"course_id": courseID})
	}
	payURL, err := HandoffRequest{CourseID: offering.ID, UserID: sender.ID}.URL(r.baseURL)
	if err != nil {
		return Render{}, fmt.Errorf("build handoff url: %w", err)
	}
	return Render{
		View:     ViewDetail,
		CourseID: offering.ID,
		Text:     r.detailText(offering),
		HTML:     true,
		Rows: [][]Button{
			{{Label: r.printer.Sprintf(msgButtonPay), URL: payURL}},
			{{Label: r.printer.Sprintf(msgButtonBack), Payload: BackPayload}},
		},
	}, nil
}

func (r *Router) detailText(c catalog.CourseOffering) string {
	sections := []string{
		r.printer.Sprintf(msgDetailTitle, html.EscapeString(c.Title)),
		r.printer.Sprintf(msgDetailPrice, html.EscapeString(c.PriceOriginal), html.EscapeString(c.PriceDiscounted)),
	}
	if len(c.Features) > 0 {
		lines := make([]string, len(c.Features))
		for i, feature := range c.Features {
			lines[i] = html.EscapeString(feature)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if c.Outcome != "" {
		sections = append(sections, html.EscapeString(c.Outcome))
	}
	sections = append(sections, r.printer.Sprintf(msgDetailCTA))
	return strings.Join(sections, "\n\n")
}
