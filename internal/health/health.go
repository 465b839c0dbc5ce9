// Package health serves the standard gRPC health protocol and keeps the
// serving status in line with database reachability.
package health

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Service is the name reported for the web app. The empty name reports the
// overall server status.
const Service = "shop.web"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Checker struct {
	db  Pinger
	hs  *health.Server
	srv *grpc.Server

	mu      sync.RWMutex
	healthy bool
}

func New(db Pinger) *Checker {
	hs := health.NewServer()
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)
	c := &Checker{db: db, hs: hs, srv: srv}
	c.set(false)
	return c
}

func (c *Checker) set(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	c.mu.Lock()
	changed := c.healthy != ok
	c.healthy = ok
	c.mu.Unlock()

	c.hs.SetServingStatus("", st)
	c.hs.SetServingStatus(Service, st)
	if changed {
		log.Info().Str("status", st.String()).Msg("[health] status changed")
	}
}

// Check pings the database once and updates the serving status.
func (c *Checker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	err := c.db.Ping(ctx)
	c.set(err == nil)
	return err
}

func (c *Checker) Healthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthy
}

// Watch re-checks every interval until ctx is done.
func (c *Checker) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if err := c.Check(ctx); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("[health] database check failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Serve blocks serving gRPC on l until Stop is called.
func (c *Checker) Serve(l net.Listener) error {
	log.Info().Str("addr", l.Addr().String()).Msg("[health] grpc listening")
	return c.srv.Serve(l)
}

// Stop marks everything NOT_SERVING and drains the gRPC server.
func (c *Checker) Stop() {
	c.hs.Shutdown()
	c.srv.GracefulStop()
}
