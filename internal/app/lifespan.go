// Package app drives the process lifecycle: one startup phase that must
// succeed before the listener binds, a serving phase, and one shutdown
// phase that drains requests and releases the connection pool.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/uptrace/bun"

	"webskeleton/internal/database/migration"
)

// Server is the subset of *fiber.App the lifespan drives.
type Server interface {
	Listen(addr string) error
	ShutdownWithContext(ctx context.Context) error
}

// ConnSource is the subset of *database.Pool the lifespan manages.
type ConnSource interface {
	DB() *bun.DB
	Probe(ctx context.Context) error
	Close() error
}

// Options configures a Lifespan.
type Options struct {
	Server          Server
	Pool            ConnSource
	Addr            string
	ShutdownTimeout time.Duration
	Loc             *time.Location
	DBHost          string
}

// Lifespan runs the linear starting → running → stopping state machine.
// There are no retries: a failed startup probe is fatal to the caller.
type Lifespan struct {
	server          Server
	pool            ConnSource
	addr            string
	shutdownTimeout time.Duration
	loc             *time.Location
	dbHost          string

	shutdownOnce sync.Once
	shutdownErr  error
}

// New builds a Lifespan from options, applying defaults for the timeout
// and location.
func New(opts Options) *Lifespan {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.Loc == nil {
		opts.Loc = time.UTC
	}
	return &Lifespan{
		server:          opts.Server,
		pool:            opts.Pool,
		addr:            opts.Addr,
		shutdownTimeout: opts.ShutdownTimeout,
		loc:             opts.Loc,
		dbHost:          opts.DBHost,
	}
}

// Startup runs the boot phase: a transactional no-op probe against the
// database, then the schema migration. Callers must not proceed to Run
// after a Startup error.
func (l *Lifespan) Startup(ctx context.Context) error {
	if err := l.pool.Probe(ctx); err != nil {
		return fmt.Errorf("startup probe: %w", err)
	}
	if err := migration.EnsureMigrated(ctx, l.pool.DB(), l.loc, l.dbHost); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	l.logEvent("lifespan_started", nil)
	return nil
}

// Run serves HTTP until a termination signal arrives or the listener
// fails, then performs the stopping phase. The pool is released on every
// exit path.
func (l *Lifespan) Run() error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- l.server.Listen(l.addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		// Listener failed before any signal; still release the pool.
		_ = l.pool.Close()
		return err
	case sig := <-sigCh:
		l.logEvent("lifespan_signal", map[string]any{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer cancel()
	return l.Shutdown(ctx)
}

// Shutdown stops accepting requests, waits for in-flight ones up to the
// context deadline, then disposes the connection pool. Repeated calls
// return the first result without shutting down again.
func (l *Lifespan) Shutdown(ctx context.Context) error {
	l.shutdownOnce.Do(func() {
		err := l.server.ShutdownWithContext(ctx)
		if cerr := l.pool.Close(); err == nil {
			err = cerr
		}
		l.logEvent("lifespan_stopped", nil)
		l.shutdownErr = err
	})
	return l.shutdownErr
}

func (l *Lifespan) logEvent(event string, extra map[string]any) {
	entry := map[string]any{
		"ts":        time.Now().In(l.loc).Format(time.RFC3339Nano),
		"level":     "info",
		"component": "lifespan",
		"event":     event,
	}
	for k, v := range extra {
		entry[k] = v
	}
	if b, err := json.Marshal(entry); err == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}
