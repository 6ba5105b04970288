// Package config carga la configuración de los servicios (gateway, auth,
// users) desde YAML o desde ENV (con .env opcional vía godotenv en main).
// Un único struct Config cubre los tres servicios; cada binario usa el
// bloque que le corresponde y Validate() chequea sólo lo que necesita.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"` // debug | info | warn | error
	} `yaml:"log"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	// JWT: compartido entre auth (emite) y gateway (valida).
	JWT struct {
		// Secret: clave simétrica HS256, mínimo 32 bytes. Se inyecta
		// explícitamente en el Issuer/Validator; nunca se lee de estado global.
		Secret    string `yaml:"secret"`
		Issuer    string `yaml:"issuer"`
		AccessTTL string `yaml:"access_ttl"` // ej: "15m"
	} `yaml:"jwt"`

	// Gateway
	Gateway struct {
		RoutesPath string `yaml:"routes_path"` // YAML con la tabla de rutas
	} `yaml:"gateway"`

	// Auth service
	Auth struct {
		UserServiceURL string `yaml:"user_service_url"`
		ClientTimeout  string `yaml:"client_timeout"` // timeout HTTP hacia users (ej: "5s")
		WelcomeEmail   bool   `yaml:"welcome_email"`
	} `yaml:"auth"`

	// Users service (storage + cache)
	Storage struct {
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
		// PermissionTTL: TTL del read-through de permisos por rol.
		PermissionTTL string `yaml:"permission_ttl"`
	} `yaml:"cache"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`
}

// Load lee un YAML y aplica defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config read: %w", err)
	}
	c := &Config{}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config parse: %w", err)
	}
	c.applyDefaults()
	return c, nil
}

// FromEnv construye la config sólo desde variables de entorno.
func FromEnv() *Config {
	c := &Config{}

	c.App.Env = getenv("APP_ENV", "dev")
	c.Log.Level = getenv("LOG_LEVEL", "info")
	c.Server.Addr = getenv("SERVER_ADDR", "")

	c.JWT.Secret = getenv("JWT_SECRET", "")
	c.JWT.Issuer = getenv("JWT_ISSUER", "gacetilla-auth")
	c.JWT.AccessTTL = getenv("JWT_ACCESS_TTL", "15m")

	c.Gateway.RoutesPath = getenv("GATEWAY_ROUTES_PATH", "configs/routes.yaml")

	c.Auth.UserServiceURL = getenv("AUTH_USER_SERVICE_URL", "http://localhost:8082")
	c.Auth.ClientTimeout = getenv("AUTH_CLIENT_TIMEOUT", "5s")
	c.Auth.WelcomeEmail = getenvBool("AUTH_WELCOME_EMAIL", false)

	c.Storage.DSN = getenv("STORAGE_DSN", "")
	c.Storage.Postgres.MaxOpenConns = getenvInt("POSTGRES_MAX_OPEN_CONNS", 5)
	c.Storage.Postgres.MaxIdleConns = getenvInt("POSTGRES_MAX_IDLE_CONNS", 2)
	c.Storage.Postgres.ConnMaxLifetime = getenv("POSTGRES_CONN_MAX_LIFETIME", "30m")

	c.Cache.Kind = getenv("CACHE_KIND", "memory")
	c.Cache.Redis.Addr = getenv("REDIS_ADDR", "localhost:6379")
	c.Cache.Redis.DB = getenvInt("REDIS_DB", 0)
	c.Cache.Redis.Prefix = getenv("REDIS_PREFIX", "gacetilla:")
	c.Cache.Memory.DefaultTTL = getenv("CACHE_MEMORY_DEFAULT_TTL", "2m")
	c.Cache.PermissionTTL = getenv("CACHE_PERMISSION_TTL", "30s")

	c.SMTP.Host = getenv("SMTP_HOST", "")
	c.SMTP.Port = getenvInt("SMTP_PORT", 587)
	c.SMTP.Username = getenv("SMTP_USERNAME", "")
	c.SMTP.Password = getenv("SMTP_PASSWORD", "")
	c.SMTP.From = getenv("SMTP_FROM", c.SMTP.Username)

	c.Flags.Migrate = getenvBool("FLAGS_MIGRATE", true)

	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "gacetilla-auth"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "15m"
	}
	if c.Auth.ClientTimeout == "" {
		c.Auth.ClientTimeout = "5s"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Cache.PermissionTTL == "" {
		c.Cache.PermissionTTL = "30s"
	}
	if c.Storage.Postgres.MaxOpenConns == 0 {
		c.Storage.Postgres.MaxOpenConns = 5
	}
	if c.Storage.Postgres.MaxIdleConns == 0 {
		c.Storage.Postgres.MaxIdleConns = 2
	}
	if c.Storage.Postgres.ConnMaxLifetime == "" {
		c.Storage.Postgres.ConnMaxLifetime = "30m"
	}
}

// AccessTTL parsea JWT.AccessTTL con fallback a 15m.
func (c *Config) AccessTTL() time.Duration {
	if d, err := time.ParseDuration(c.JWT.AccessTTL); err == nil && d > 0 {
		return d
	}
	return 15 * time.Minute
}

// ClientTimeout parsea Auth.ClientTimeout con fallback a 5s.
func (c *Config) ClientTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Auth.ClientTimeout); err == nil && d > 0 {
		return d
	}
	return 5 * time.Second
}

// PermissionTTL parsea Cache.PermissionTTL con fallback a 30s.
func (c *Config) PermissionTTL() time.Duration {
	if d, err := time.ParseDuration(c.Cache.PermissionTTL); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

// ValidateJWT chequea lo mínimo que gateway y auth necesitan para firmar/validar.
func (c *Config) ValidateJWT() error {
	if len(strings.TrimSpace(c.JWT.Secret)) < 32 {
		return errors.New("jwt.secret faltante o muy corta: se requieren >=32 bytes")
	}
	return nil
}

// ValidateUsers chequea lo que el user service necesita.
func (c *Config) ValidateUsers() error {
	if strings.TrimSpace(c.Storage.DSN) == "" {
		return errors.New("storage.dsn faltante")
	}
	return nil
}

// ─── helpers ENV ───

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
