// Package coursebot implements the course catalog chat surface.
//
// The bot renders a fixed catalog and hands buyers off to an external payment
// service through a single URL. Checkout, webhooks and invite delivery stay
// with that service; nothing here keeps per-user view state.
package coursebot
