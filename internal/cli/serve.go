package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/yunchaoli/cablerig/internal/api"
	"github.com/yunchaoli/cablerig/pkg/cache"
	"github.com/yunchaoli/cablerig/pkg/pipeline"
	"github.com/yunchaoli/cablerig/pkg/store"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		mongoURI string
		mongoDB  string
		redisURL string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cablerig HTTP API",
		Long: `Run the cablerig HTTP API.

Batches are persisted in MongoDB when --mongo-uri is set, otherwise in an
in-process store that is lost on restart. Build and render results are
cached in Redis when --redis-url is set, otherwise in the local file cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), serveOpts{
				addr:     addr,
				mongoURI: mongoURI,
				mongoDB:  mongoDB,
				redisURL: redisURL,
				noCache:  noCache,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection URI (empty: in-memory store)")
	cmd.Flags().StringVar(&mongoDB, "mongo-db", "cablerig", "MongoDB database name")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "Redis connection URL (empty: file cache)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string
	mongoURI string
	mongoDB  string
	redisURL string
	noCache  bool
}

// runServe wires up the store, cache and runner, then serves until the
// context is cancelled.
func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	st, err := newStore(ctx, opts)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			c.Logger.Warn("store close failed", "err", err)
		}
	}()

	cch, err := newServeCache(ctx, opts)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}

	runner := pipeline.NewRunner(cch, nil, c.Logger)
	defer runner.Close()

	server := &http.Server{
		Addr:              opts.addr,
		Handler:           api.NewServer(runner, st, c.Logger).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", opts.addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newStore selects the batch store from the serve options.
func newStore(ctx context.Context, opts serveOpts) (store.Store, error) {
	if opts.mongoURI != "" {
		return store.NewMongoStore(ctx, opts.mongoURI, opts.mongoDB)
	}
	return store.NewMemoryStore(), nil
}

// newServeCache selects the artifact cache from the serve options.
func newServeCache(ctx context.Context, opts serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisURL != "" {
		return cache.NewRedisCache(ctx, opts.redisURL)
	}
	return newCache(false)
}
