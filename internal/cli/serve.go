package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jobtimeline/internal/server"
	"github.com/matzehuels/jobtimeline/pkg/cache"
	"github.com/matzehuels/jobtimeline/pkg/observability"
	"github.com/matzehuels/jobtimeline/pkg/pipeline"
	"github.com/matzehuels/jobtimeline/pkg/storage"
)

// redisKeyPrefix scopes server cache keys in a shared Redis.
const redisKeyPrefix = "jobtimeline:"

// serveFlags holds the serve command's settings.
type serveFlags struct {
	addr      string
	redisAddr string
	mongoURI  string
	mongoDB   string
	storeDir  string
	noCache   bool
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var sf serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout pipeline over HTTP",
		Long: `Serve the layout pipeline over HTTP.

Endpoints:
  POST /v1/layout          compute a layout from an inline workflow
  POST /v1/render          render artifacts from an inline workflow
  GET  /v1/layouts/{hash}  fetch a saved layout
  GET  /healthz            liveness

The cache is Redis when --redis-addr is set, the local file cache otherwise.
Layouts are saved to MongoDB when --mongo-uri is set, to --store-dir when
given, and kept in memory otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyServerConfig(cmd, &sf)
			return c.runServe(cmd.Context(), sf)
		},
	}

	cmd.Flags().StringVar(&sf.addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&sf.redisAddr, "redis-addr", "", "Redis address for the shared cache")
	cmd.Flags().StringVar(&sf.mongoURI, "mongo-uri", "", "MongoDB URI for the layout store")
	cmd.Flags().StringVar(&sf.mongoDB, "mongo-db", storage.DefaultDatabase, "MongoDB database name")
	cmd.Flags().StringVar(&sf.storeDir, "store-dir", "", "directory for the file layout store")
	cmd.Flags().BoolVar(&sf.noCache, "no-cache", false, "disable caching")

	return cmd
}

// applyServerConfig fills flags the user did not set from the [server] table.
func (c *CLI) applyServerConfig(cmd *cobra.Command, sf *serveFlags) {
	cfg := c.config.Server
	set := func(name string, dst *string, v string) {
		if v != "" && !cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("addr", &sf.addr, cfg.Addr)
	set("redis-addr", &sf.redisAddr, cfg.RedisAddr)
	set("mongo-uri", &sf.mongoURI, cfg.MongoURI)
	set("mongo-db", &sf.mongoDB, cfg.MongoDB)
	set("store-dir", &sf.storeDir, cfg.StoreDir)
}

func (c *CLI) runServe(ctx context.Context, sf serveFlags) error {
	hooks := observability.NewLogHooks(c.Logger)
	hooks.Register()

	ca, keyer, err := serverCache(ctx, sf)
	if err != nil {
		return err
	}
	store, err := serverStore(ctx, sf)
	if err != nil {
		ca.Close()
		return err
	}

	runner := pipeline.NewRunner(ca, keyer, store, c.Logger)
	defer runner.Close()

	c.Logger.Info("starting server",
		"addr", sf.addr,
		"cache", fmt.Sprintf("%T", ca),
		"store", fmt.Sprintf("%T", store))

	srv := server.New(server.Config{
		Addr:   sf.addr,
		Runner: runner,
		Logger: c.Logger,
	})
	return srv.ListenAndServe(ctx)
}

func serverCache(ctx context.Context, sf serveFlags) (cache.Cache, cache.Keyer, error) {
	if sf.noCache {
		return cache.NewNullCache(), nil, nil
	}
	if sf.redisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: sf.redisAddr})
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return rc, cache.NewScopedKeyer(cache.NewDefaultKeyer(), redisKeyPrefix), nil
	}
	fc, err := newCache(false)
	if err != nil {
		return nil, nil, err
	}
	return fc, nil, nil
}

func serverStore(ctx context.Context, sf serveFlags) (storage.Store, error) {
	switch {
	case sf.mongoURI != "":
		ms, err := storage.NewMongoStore(ctx, sf.mongoURI, sf.mongoDB)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		return ms, nil
	case sf.storeDir != "":
		fs, err := storage.NewFileStore(sf.storeDir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	default:
		return storage.NewMemoryStore(), nil
	}
}
