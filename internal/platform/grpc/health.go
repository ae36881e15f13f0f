// Package grpc holds gRPC client helpers shared by coursebot commands.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// ErrNotServing reports a reachable peer whose health status is not SERVING.
var ErrNotServing = errors.New("service is not serving")

// DefaultClientDialOptions returns standard dial options for local probes.
// The OTel stats handler propagates trace context when a provider is set.
func DefaultClientDialOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// Probe performs one health check against addr for service ("" checks the
// whole server) and returns nil only when the peer reports SERVING.
func Probe(ctx context.Context, addr string, service string, timeout time.Duration) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return errors.New("health address is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	conn, err := gogrpc.NewClient(addr, DefaultClientDialOptions()...)
	if err != nil {
		return fmt.Errorf("dial health %s: %w", addr, err)
	}
	defer conn.Close()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	response, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		return fmt.Errorf("check health %s: %w", addr, err)
	}
	if status := response.GetStatus(); status != grpc_health_v1.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: %s", ErrNotServing, status)
	}
	return nil
}

// WaitForServing polls Probe with backoff until SERVING or ctx ends.
func WaitForServing(ctx context.Context, addr string, service string, logf func(string, ...any)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	backoff := 50 * time.Millisecond
	for {
		err := Probe(ctx, addr, service, time.Second)
		if err == nil {
			return nil
		}
		if logf != nil {
			logf("waiting for health: %v", err)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for health: %w", ctx.Err())
		case <-time.After(backoff):
		}
		if backoff < time.Second {
			backoff *= 2
		}
	}
}
