// Package catalog holds the immutable registry of purchasable courses.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/louisbranch/coursebot/internal/platform/errors"
)

// maxIDLength keeps "course_"+id inside Telegram's 64-byte callback data.
const maxIDLength = 48

// ErrCourseNotFound is returned by Lookup for ids absent from the registry.
var ErrCourseNotFound = apperrors.New(apperrors.CodeCourseNotFound, "course not found")

// CourseOffering is the display metadata for one course.
//
// Prices are opaque display strings and are never parsed.
type CourseOffering struct {
	ID              string
	Title           string
	ButtonLabel     string
	PriceOriginal   string
	PriceDiscounted string
	Features        []string
	Outcome         string
}

func (c CourseOffering) clone() CourseOffering {
	c.Features = slices.Clone(c.Features)
	return c
}

// Registry is an ordered, read-only set of course offerings. It is safe for
// concurrent use because nothing mutates it after New returns.
type Registry struct {
	offerings []CourseOffering
	byID      map[string]int
}

// New validates offerings and builds a registry in the given display order.
func New(offerings ...CourseOffering) (*Registry, error) {
	if len(offerings) == 0 {
		return nil, apperrors.New(apperrors.CodeCourseInvalid, "catalog must contain at least one course")
	}
	r := &Registry{
		offerings: make([]CourseOffering, 0, len(offerings)),
		byID:      make(map[string]int, len(offerings)),
	}
	for i, offering := range offerings {
		if err := validateOffering(offering); err != nil {
			return nil, fmt.Errorf("course %d: %w", i, err)
		}
		if _, exists := r.byID[offering.ID]; exists {
			return nil, apperrors.WithMetadata(apperrors.CodeCourseDuplicate,
				fmt.Sprintf("duplicate course id %q", offering.ID),
				map[string]string{"course_id": offering.ID})
		}
		r.byID[offering.ID] = len(r.offerings)
		r.offerings = append(r.offerings, offering.clone())
	}
	return r, nil
}

// MustNew is New for static catalogs; it panics on invalid input.
func MustNew(offerings ...CourseOffering) *Registry {
	r, err := New(offerings...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the offering with id or ErrCourseNotFound.
func (r *Registry) Lookup(id string) (CourseOffering, error) {
	if r != nil {
		if idx, ok := r.byID[id]; ok {
			return r.offerings[idx].clone(), nil
		}
	}
	return CourseOffering{}, apperrors.WithMetadata(apperrors.CodeCourseNotFound,
		fmt.Sprintf("course %q not found", id),
		map[string]string{"course_id": id})
}

// All returns every offering in display order.
func (r *Registry) All() []CourseOffering {
	if r == nil {
		return nil
	}
	out := make([]CourseOffering, len(r.offerings))
	for i, offering := range r.offerings {
		out[i] = offering.clone()
	}
	return out
}

// Len reports the number of offerings.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.offerings)
}

func validateOffering(c CourseOffering) error {
	if c.ID == "" {
		return apperrors.New(apperrors.CodeCourseInvalid, "course id is required")
	}
	if len(c.ID) > maxIDLength {
		return apperrors.New(apperrors.CodeCourseInvalid, fmt.Sprintf("course id %q exceeds %d bytes", c.ID, maxIDLength))
	}
	for _, ch := range c.ID {
		if !isIDRune(ch) {
			return apperrors.New(apperrors.CodeCourseInvalid, fmt.Sprintf("course id %q must use [a-z0-9_]", c.ID))
		}
	}
	if strings.TrimSpace(c.Title) == "" {
		return apperrors.New(apperrors.CodeCourseInvalid, fmt.Sprintf("course %q title is required", c.ID))
	}
	return nil
}

func isIDRune(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
}
