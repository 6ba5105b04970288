// users: el user service. Persiste usuarios, roles, permisos y
// perfiles en Postgres y sirve las lecturas que el auth service y el
// resto del mesh necesitan.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/gacetilla/internal/cache"
	"github.com/dropDatabas3/gacetilla/internal/config"
	"github.com/dropDatabas3/gacetilla/internal/httpx"
	"github.com/dropDatabas3/gacetilla/internal/observability/logger"
	"github.com/dropDatabas3/gacetilla/internal/userstore/cached"
	"github.com/dropDatabas3/gacetilla/internal/userstore/pg"
	"github.com/dropDatabas3/gacetilla/internal/usersapi"
	migrations "github.com/dropDatabas3/gacetilla/migrations/postgres"
)

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH)")
		flagEnvOnly    = flag.Bool("env", false, "usar SOLO env (y .env si se pasa -env-file)")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
	)
	flag.Parse()

	if *flagEnvFile != "" && (fileExists(*flagEnvFile) || *flagEnvOnly) {
		if err := godotenv.Load(*flagEnvFile); err == nil {
			log.Printf("dotenv: cargado %s", *flagEnvFile)
		}
	}

	cfg, err := loadConfig(*flagEnvOnly, *flagConfigPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateUsers(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "users"})
	defer logger.Sync()

	ctx := context.Background()

	lifetime, _ := time.ParseDuration(cfg.Storage.Postgres.ConnMaxLifetime)
	store, pool, err := pg.New(ctx, cfg.Storage.DSN, cfg.Storage.Postgres.MaxOpenConns, lifetime)
	if err != nil {
		logger.L().Fatal("postgres", logger.Err(err))
	}
	defer pool.Close()

	if cfg.Flags.Migrate {
		if err := migrations.Up(ctx, pool); err != nil {
			logger.L().Fatal("migrations", logger.Err(err))
		}
		logger.L().Info("migrations applied")
	}

	memTTL, _ := time.ParseDuration(cfg.Cache.Memory.DefaultTTL)
	cacheClient, err := cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: memTTL,
	})
	if err != nil {
		logger.L().Fatal("cache", logger.Err(err))
	}
	defer cacheClient.Close()
	logger.L().Info("cache ready", logger.String("kind", cfg.Cache.Kind))

	metricsHandler, err := httpx.RegisterMetrics(nil)
	if err != nil {
		logger.L().Fatal("metrics", logger.Err(err))
	}

	handler := usersapi.Router(usersapi.Deps{
		Store:       store,
		Permissions: cached.NewPermissions(store.Permissions, cacheClient, cfg.PermissionTTL()),
		Metrics:     metricsHandler,
	})

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8082"
	}
	run(addr, handler)
}

func loadConfig(envOnly bool, path string) (*config.Config, error) {
	if envOnly {
		return config.FromEnv(), nil
	}
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}
	return config.Load(path)
}

func run(addr string, handler http.Handler) {
	srv := httpx.NewServer(addr, handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.L().Info("listening", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.L().Info("shutting down")
		return httpx.Shutdown(srv, 10*time.Second)
	})

	if err := g.Wait(); err != nil {
		logger.L().Fatal("server", logger.Err(err))
	}
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
