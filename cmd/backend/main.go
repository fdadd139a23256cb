// Command backend is the reference REST backend the portal consumes. It
// serves the conventional collection endpoints ({resource}/ and
// {resource}/{id}/) over a Postgres record store and issues access tokens
// from login-user/. It binds the IPv4 loopback address by default.
package main

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/crypto/bcrypt"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	defaultAddr     = "127.0.0.1:8000"
	defaultTokenTTL = 12 * time.Hour
)

// resourceNames is the closed set of collections the record store serves.
var resourceNames = []string{
	"continents", "countries", "states", "districts", "cities", "zones",
	"wards", "properties", "sub-properties", "customers", "fuels",
	"vehicle-types", "vehicles", "staff", "complaints", "feedback",
	"waste-collections", "screens", "permissions", "user-types", "users",
}

type Config struct {
	Addr                   string
	Env                    string
	DatabaseURL            string
	SigningSecret          string
	TokenTTL               time.Duration
	BootstrapAdminUsername string
	BootstrapAdminPassword string
}

type App struct {
	cfg *Config
	db  *sql.DB
	log *slog.Logger
}

type apiError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string][]string
}

func (e *apiError) Error() string { return e.Message }

func main() {
	if err := loadDotEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		panic(err)
	}

	app := &App{cfg: cfg, db: db, log: logger}

	if err := app.runMigrations(ctx); err != nil {
		panic(err)
	}
	if err := app.bootstrapAdmin(ctx); err != nil {
		panic(err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(app.loggingMiddleware())

	app.registerRoutes(r)

	app.log.Info("starting backend", "addr", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		panic(err)
	}
}

func loadConfig() (*Config, error) {
	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		host := valueFromEnvKeys("PGHOST", "POSTGRES_HOST")
		if host == "" {
			host = "127.0.0.1"
		}
		port := valueFromEnvKeys("PGPORT", "POSTGRES_PORT")
		if port == "" {
			port = "5432"
		}
		dbname := valueFromEnvKeys("PGDATABASE", "POSTGRES_DB")
		user := valueFromEnvKeys("PGUSER", "POSTGRES_USER")
		password := valueFromEnvKeys("PGPASSWORD", "POSTGRES_PASSWORD")
		sslmode := valueFromEnvKeys("PGSSLMODE", "POSTGRES_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}
		if dbname != "" && user != "" {
			databaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, dbname, sslmode)
		}
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or PG*/POSTGRES_* variables must be configured")
	}

	secret := strings.TrimSpace(os.Getenv("APP_SIGNING_SECRET"))
	if len(secret) < 16 {
		return nil, fmt.Errorf("APP_SIGNING_SECRET must be at least 16 characters")
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "development"
	}

	cfg := &Config{
		Addr:                   valueOrDefault("BACKEND_ADDR", defaultAddr),
		Env:                    env,
		DatabaseURL:            databaseURL,
		SigningSecret:          secret,
		TokenTTL:               defaultTokenTTL,
		BootstrapAdminUsername: strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_USERNAME")),
		BootstrapAdminPassword: strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")),
	}

	if raw := strings.TrimSpace(os.Getenv("TOKEN_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("TOKEN_TTL must be a valid duration")
		}
		cfg.TokenTTL = ttl
	}

	return cfg, nil
}

func loadDotEnvFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, raw := range strings.Split(string(content), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.Trim(strings.TrimSpace(line[idx+1:]), "\"")
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
	return nil
}

func valueOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func valueFromEnvKeys(keys ...string) string {
	for _, key := range keys {
		value := strings.TrimSpace(os.Getenv(key))
		if value != "" {
			return value
		}
	}
	return ""
}

func (a *App) runMigrations(ctx context.Context) error {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return err
	}

	if _, err := a.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		var exists bool
		if err := a.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)`, file).Scan(&exists); err != nil {
			return err
		}
		if exists {
			continue
		}

		content, err := migrationFiles.ReadFile("migrations/" + file)
		if err != nil {
			return err
		}

		tx, err := a.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1)`, file); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		a.log.Info("applied migration", "file", file)
	}

	return nil
}

// bootstrapAdmin ensures a privileged account exists so a fresh database is
// reachable from the portal login form.
func (a *App) bootstrapAdmin(ctx context.Context) error {
	username := a.cfg.BootstrapAdminUsername
	password := a.cfg.BootstrapAdminPassword
	if username == "" || password == "" {
		a.log.Info("bootstrap admin not configured")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return a.storeUpsertAccount(ctx, username, string(hash), "admin")
}

func (a *App) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func isKnownResource(name string) bool {
	for _, known := range resourceNames {
		if known == name {
			return true
		}
	}
	return false
}
