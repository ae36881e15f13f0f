package router

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/coursebot/internal/platform/errors"
)

// CheckoutPath is the fulfillment service route that creates a checkout
// session. The fulfillment webhook reads course and tg back from the session
// metadata, so the path and parameter names must not change unilaterally.
const CheckoutPath = "/stripe/create-checkout"

// HandoffRequest carries what the payment service needs to resume a purchase.
type HandoffRequest struct {
	CourseID string
	UserID   int64
}

// URL renders the handoff link against base, an absolute http(s) origin.
func (h HandoffRequest) URL(base string) (string, error) {
	u, err := ParseBaseURL(base)
	if err != nil {
		return "", err
	}
	if h.CourseID == "" {
		return "", apperrors.New(apperrors.CodeHandoffInvalid, "handoff course id is required")
	}
	if h.UserID <= 0 {
		return "", apperrors.New(apperrors.CodeSenderMissing, "handoff user id is required")
	}
	u.Path += CheckoutPath
	u.RawQuery = url.Values{
		"course": {h.CourseID},
		"tg":     {strconv.FormatInt(h.UserID, 10)},
	}.Encode()
	return u.String(), nil
}

// ParseBaseURL validates a configured public base address and returns it with
// any trailing slash removed.
func ParseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperrors.New(apperrors.CodeConfigMissing, "public base url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfigInvalid, "parse public base url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, apperrors.New(apperrors.CodeConfigInvalid, fmt.Sprintf("public base url %q must use http or https", raw))
	}
	if u.Host == "" {
		return nil, apperrors.New(apperrors.CodeConfigInvalid, fmt.Sprintf("public base url %q must be absolute", raw))
	}
	if u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return nil, apperrors.New(apperrors.CodeConfigInvalid, fmt.Sprintf("public base url %q must not carry credentials, query or fragment", raw))
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u, nil
}
