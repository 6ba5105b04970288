// auth: el servicio de autenticación. Verifica credenciales contra el
// user service, emite tokens y registra cuentas nuevas.
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

	"github.com/dropDatabas3/gacetilla/internal/authapi"
	"github.com/dropDatabas3/gacetilla/internal/config"
	"github.com/dropDatabas3/gacetilla/internal/httpx"
	"github.com/dropDatabas3/gacetilla/internal/identity"
	"github.com/dropDatabas3/gacetilla/internal/mail"
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

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "auth"})
	defer logger.Sync()

	issuer, err := token.NewIssuer([]byte(cfg.JWT.Secret), cfg.JWT.Issuer, cfg.AccessTTL())
	if err != nil {
		logger.L().Fatal("token issuer", logger.Err(err))
	}

	client := identity.NewClient(cfg.Auth.UserServiceURL, cfg.ClientTimeout())
	composer := identity.NewComposer(client)

	var sender mail.Sender
	if cfg.Auth.WelcomeEmail && cfg.SMTP.Host != "" {
		sender = mail.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
	}

	metricsHandler, err := httpx.RegisterMetrics(nil)
	if err != nil {
		logger.L().Fatal("metrics", logger.Err(err))
	}

	ctrl := authapi.NewController(authapi.Deps{
		Verifier:  identity.NewVerifier(composer),
		Registrar: identity.NewRegistrar(client),
		Issuer:    issuer,
		Mail:      sender,
	})

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8081"
	}
	run(addr, authapi.Router(ctrl, metricsHandler))
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
