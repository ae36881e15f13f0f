package router

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/coursebot/internal/platform/errors"
	i18ncatalog "github.com/louisbranch/coursebot/internal/platform/i18n/catalog"
	"github.com/louisbranch/coursebot/internal/services/coursebot/catalog"
)

const testBaseURL = "https://example.test"

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	bundle, err := i18ncatalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("load i18n catalog: %v", err)
	}
	printer, _ := bundle.Printer(i18ncatalog.BaseLocale)
	r, err := New(catalog.Default(), Options{BaseURL: testBaseURL, Printer: printer})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return r
}

func TestStartRendersOneButtonPerCourse(t *testing.T) {
	r := newTestRouter(t)

	got, err := r.Handle(StartEvent(), Sender{ID: 42})
	if err != nil {
		t.Fatalf("handle start: %v", err)
	}
	if got.View != ViewList {
		t.Fatalf("view = %v, want list", got.View)
	}
	if got.Text == "" {
		t.Fatal("expected greeting text")
	}
	want := []string{"course_basic", "course_basic_vip", "course_steps", "course_steps_vip"}
	if len(got.Rows) != len(want) {
		t.Fatalf("rows = %d, want %d", len(got.Rows), len(want))
	}
	for i, payload := range want {
		if len(got.Rows[i]) != 1 {
			t.Fatalf("row %d has %d buttons, want 1", i, len(got.Rows[i]))
		}
		if got.Rows[i][0].Payload != payload {
			t.Fatalf("row %d payload = %q, want %q", i, got.Rows[i][0].Payload, payload)
		}
		if got.Rows[i][0].URL != "" {
			t.Fatalf("row %d should not carry a url", i)
		}
	}
}

func TestSelectCourseRendersDetailForEveryCourse(t *testing.T) {
	r := newTestRouter(t)
	sender := Sender{ID: 7}

	for _, course := range catalog.Default().All() {
		got, err := r.Handle(ParsePayload("course_"+course.ID), sender)
		if err != nil {
			t.Fatalf("handle %s: %v", course.ID, err)
		}
		if got.View != ViewDetail || got.CourseID != course.ID || !got.HTML {
			t.Fatalf("unexpected render header for %s: %+v", course.ID, got)
		}
		for _, part := range append([]string{course.Title, course.PriceOriginal, course.PriceDiscounted}, course.Features...) {
			if !strings.Contains(got.Text, part) {
				t.Fatalf("detail for %s missing %q in %q", course.ID, part, got.Text)
			}
		}
		if !strings.Contains(got.Text, "<s>"+course.PriceOriginal) {
			t.Fatalf("expected struck-through original price for %s", course.ID)
		}

		var urls []string
		for _, row := range got.Rows {
			for _, button := range row {
				if button.URL != "" {
					urls = append(urls, button.URL)
				}
			}
		}
		wantURL := testBaseURL + "/stripe/create-checkout?course=" + course.ID + "&tg=7"
		if len(urls) != 1 || urls[0] != wantURL {
			t.Fatalf("payment urls = %v, want [%s]", urls, wantURL)
		}
		last := got.Rows[len(got.Rows)-1]
		if len(last) != 1 || last[0].Payload != BackPayload {
			t.Fatalf("expected back button last, got %+v", last)
		}
	}
}

func TestSelectCourseScenario(t *testing.T) {
	r := newTestRouter(t)

	got, err := r.Handle(ParsePayload("course_steps"), Sender{ID: 42})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	want := "https://example.test/stripe/create-checkout?course=steps&tg=42"
	if got.HandoffURL() != want {
		t.Fatalf("handoff url = %q, want %q", got.HandoffURL(), want)
	}
}

func TestHandleIsIdempotent(t *testing.T) {
	r := newTestRouter(t)
	events := []Event{StartEvent(), ParsePayload("course_basic_vip"), ParsePayload(BackPayload)}

	for _, ev := range events {
		first, err := r.Handle(ev, Sender{ID: 99})
		if err != nil {
			t.Fatalf("first %v: %v", ev.Kind, err)
		}
		second, err := r.Handle(ev, Sender{ID: 99})
		if err != nil {
			t.Fatalf("second %v: %v", ev.Kind, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("renders differ for %v:\n%+v\n%+v", ev.Kind, first, second)
		}
	}
}

func TestBackRestoresStartRender(t *testing.T) {
	r := newTestRouter(t)
	sender := Sender{ID: 5}

	start, err := r.Handle(StartEvent(), sender)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, course := range catalog.Default().All() {
		if _, err := r.Handle(ParsePayload(CoursePayload(course.ID)), sender); err != nil {
			t.Fatalf("select %s: %v", course.ID, err)
		}
		back, err := r.Handle(ParsePayload(BackPayload), sender)
		if err != nil {
			t.Fatalf("back: %v", err)
		}
		if !reflect.DeepEqual(start, back) {
			t.Fatalf("back render differs from start:\n%+v\n%+v", start, back)
		}
	}
}

func TestUnknownCourseIsConsistencyFault(t *testing.T) {
	r := newTestRouter(t)

	got, err := r.Handle(ParsePayload("course_nope"), Sender{ID: 1})
	if got.View != ViewNone {
		t.Fatalf("expected no render, got %v", got.View)
	}
	if !errors.Is(err, catalog.ErrCourseNotFound) {
		t.Fatalf("error = %v, want course not found", err)
	}
	if !apperrors.GetCode(err).Internal() {
		t.Fatal("expected internal fault code")
	}
}

func TestMalformedPayloadsProduceNoRender(t *testing.T) {
	r := newTestRouter(t)

	for _, payload := range []string{"", "course_", "back", "back_to_list ", "COURSE_basic", "hello"} {
		got, err := r.Handle(ParsePayload(payload), Sender{ID: 1})
		if got.View != ViewNone {
			t.Fatalf("payload %q produced %v render", payload, got.View)
		}
		if !errors.Is(err, ErrUnrecognizedEvent) {
			t.Fatalf("payload %q error = %v, want unrecognized", payload, err)
		}
	}
}

func TestSelectCourseRequiresSender(t *testing.T) {
	r := newTestRouter(t)

	_, err := r.Handle(ParsePayload("course_basic"), Sender{})
	if got := apperrors.GetCode(err); got != apperrors.CodeSenderMissing {
		t.Fatalf("code = %q, want %q", got, apperrors.CodeSenderMissing)
	}
}

func TestDetailEscapesCatalogText(t *testing.T) {
	bundle, err := i18ncatalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("load i18n catalog: %v", err)
	}
	printer, _ := bundle.Printer("en-US")
	registry := catalog.MustNew(catalog.CourseOffering{
		ID:       "x",
		Title:    "A <b>bold</b> & co",
		Features: []string{"1 < 2"},
	})
	r, err := New(registry, Options{BaseURL: testBaseURL, Printer: printer})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}

	got, err := r.Handle(ParsePayload("course_x"), Sender{ID: 3})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(got.Text, "A &lt;b&gt;bold&lt;/b&gt; &amp; co") || !strings.Contains(got.Text, "1 &lt; 2") {
		t.Fatalf("catalog text not escaped: %q", got.Text)
	}
	if got.Rows[0][0].Label != "💳 Pay (Stripe)" {
		t.Fatalf("pay label = %q", got.Rows[0][0].Label)
	}
}

func TestNewValidatesOptions(t *testing.T) {
	bundle, err := i18ncatalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("load i18n catalog: %v", err)
	}
	printer, _ := bundle.Printer(i18ncatalog.BaseLocale)

	if _, err := New(nil, Options{BaseURL: testBaseURL, Printer: printer}); err == nil {
		t.Fatal("expected missing registry error")
	}
	if _, err := New(catalog.Default(), Options{BaseURL: testBaseURL}); err == nil {
		t.Fatal("expected missing printer error")
	}
	if _, err := New(catalog.Default(), Options{BaseURL: "example.test", Printer: printer}); err == nil {
		t.Fatal("expected invalid base url error")
	}
}
