// Package timeouts defines shared timeout constants used across coursebot.
// Centralizing these values keeps transport and lifecycle limits discoverable.
package timeouts

import "time"

// TelegramRequest caps one Bot API HTTP request. Long polling adds the
// configured poll timeout on top of this value.
const TelegramRequest = 10 * time.Second

// HealthProbe caps a single gRPC health probe round trip.
const HealthProbe = 2 * time.Second

// Shutdown limits how long the process waits for in-flight updates and the
// health server during graceful shutdown.
const Shutdown = 5 * time.Second
