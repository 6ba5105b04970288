// gateway: el edge del sistema. Carga la tabla de rutas, valida bearer
// tokens con el filtro de admisión y reenvía a los backends.
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

	"github.com/dropDatabas3/gacetilla/internal/config"
	"github.com/dropDatabas3/gacetilla/internal/gateway"
	"github.com/dropDatabas3/gacetilla/internal/httpx"
	mw "github.com/dropDatabas3/gacetilla/internal/httpx/middlewares"
	"github.com/dropDatabas3/gacetilla/internal/observability/logger"
	"github.com/dropDatabas3/gacetilla/internal/token"
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
	if err := cfg.ValidateJWT(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "gateway"})
	defer logger.Sync()

	table, err := gateway.LoadRouteTable(cfg.Gateway.RoutesPath)
	if err != nil {
		logger.L().Fatal("route table", logger.Err(err))
	}
	for _, r := range table.Routes() {
		logger.L().Info("route registered",
			logger.Route(r.Prefix),
			logger.Backend(r.Backend),
			logger.String("public", boolStr(r.Public)),
		)
	}

	validator, err := token.NewValidator([]byte(cfg.JWT.Secret), cfg.JWT.Issuer)
	if err != nil {
		logger.L().Fatal("token validator", logger.Err(err))
	}

	metricsHandler, err := httpx.RegisterMetrics(nil)
	if err != nil {
		logger.L().Fatal("metrics", logger.Err(err))
	}

	proxy, err := gateway.Handler(table, gateway.NewAdmissionFilter(validator))
	if err != nil {
		logger.L().Fatal("gateway handler", logger.Err(err))
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteEnvelope(w, http.StatusOK, "ok", nil)
	})
	mux.Handle("/", mw.Chain(proxy,
		mw.WithRequestID(),
		mw.WithLogging(),
		httpx.WithMetrics,
		mw.WithRecover(),
	))

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}
	run(addr, mux)
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

// run levanta el server y espera SIGINT/SIGTERM para apagarlo prolijo.
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

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
