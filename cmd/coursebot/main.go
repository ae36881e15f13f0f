// Package main starts the course catalog Telegram bot and handles termination.
//
// The process is a transport adapter: payments and invite delivery belong to
// the external fulfillment service reached through the handoff URL.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	coursebotcmd "github.com/louisbranch/coursebot/internal/cmd/coursebot"
	"github.com/louisbranch/coursebot/internal/platform/config"
)

func main() {
	cfg, err := coursebotcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("coursebot: configuration: %v", err)
	}
	log.SetPrefix("[COURSEBOT] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := coursebotcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
