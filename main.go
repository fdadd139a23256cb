package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wasteops/libs/mailer"
	"wasteops/libs/restclient"
	"wasteops/libs/routecrypt"
)

const (
	sessionCookieMaxAge      = 12 * time.Hour
	themeCookieMaxAge        = 365 * 24 * time.Hour
	apiRequestTimeout        = 15 * time.Second
	grievanceFetchTimeout    = 20 * time.Second
	trustedProxyLoopbackIPv4 = "127.0.0.1"
	trustedProxyLoopbackIPv6 = "::1"

	// The reference backend binds only to IPv4, so the fallbacks use the
	// loopback address rather than localhost.
	defaultDesktopAPIRoot = "http://127.0.0.1:8000"
	defaultMobileAPIRoot  = "http://127.0.0.1:8001"
)

type Config struct {
	Addr              string
	Env               string
	DesktopAPIURL     string
	MobileAPIURL      string
	RouteCipherSecret string
	ResendAPIKey      string
	MailerFrom        map[string]string
	EscalationEmailTo string
}

type App struct {
	cfg      *Config
	log      *slog.Logger
	cipher   *routecrypt.Cipher
	routes   *routeTable
	registry *Registry
	mailer   *mailer.Mailer
	renderer *pageRenderer

	// test hooks, assigned to the real implementations in newApp
	loginUser            func(ctx context.Context, username, password string) (*LoginResponse, error)
	fetchComplaints      func(ctx context.Context) ([]Complaint, error)
	fetchStaff           func(ctx context.Context) ([]StaffMember, error)
	fetchWasteCollection func(ctx context.Context) ([]WasteCollection, error)
	escalateComplaint    func(ctx context.Context, id string) (*Complaint, error)
}

func newApp(cfg *Config, logger *slog.Logger) (*App, error) {
	cipher, err := routecrypt.New(cfg.RouteCipherSecret)
	if err != nil {
		return nil, err
	}

	// Both API roots share one HTTP client; WithCredentials clones it before
	// attaching the mobile cookie jar.
	httpClient := &http.Client{Timeout: apiRequestTimeout}
	desktop := restclient.NewClient(cfg.DesktopAPIURL,
		restclient.WithHTTPClient(httpClient),
		restclient.WithHeader("Accept", "application/json"))
	mobile := restclient.NewClient(cfg.MobileAPIURL,
		restclient.WithHTTPClient(httpClient),
		restclient.WithHeader("Accept", "application/json"),
		restclient.WithCredentials())

	var mailProvider mailer.Provider
	if cfg.ResendAPIKey != "" {
		mailProvider = mailer.NewResendProvider(cfg.ResendAPIKey)
		logger.Info("mailer initialized", "provider", "resend")
	} else {
		mailProvider = mailer.NewLogProvider(logger)
		logger.Info("mailer initialized", "provider", "log")
	}
	mailClient := mailer.New(mailProvider, cfg.MailerFrom[mailProvider.Name()])

	app := &App{
		cfg:      cfg,
		log:      logger,
		cipher:   cipher,
		routes:   newRouteTable(cipher),
		registry: newRegistry(desktop, mobile),
		mailer:   mailClient,
		renderer: newPageRenderer(cfg.Env),
	}
	app.loginUser = app.backendLoginUser
	app.fetchComplaints = app.backendFetchComplaints
	app.fetchStaff = app.backendFetchStaff
	app.fetchWasteCollection = app.backendFetchWasteCollection
	app.escalateComplaint = app.backendEscalateComplaint
	return app, nil
}

func main() {
	if err := loadDotEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	app, err := newApp(cfg, logger)
	if err != nil {
		panic(err)
	}

	logger.Info(
		"runtime configuration",
		"env", cfg.Env,
		"addr", cfg.Addr,
		"desktop_api", cfg.DesktopAPIURL,
		"mobile_api", cfg.MobileAPIURL,
	)

	r := gin.New()
	if err := r.SetTrustedProxies([]string{trustedProxyLoopbackIPv4, trustedProxyLoopbackIPv6}); err != nil {
		panic(err)
	}
	r.Use(gin.Recovery())
	r.Use(app.loggingMiddleware())

	app.registerRoutes(r)

	app.log.Info("starting portal", "addr", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		panic(err)
	}
}

func loadConfig() (*Config, error) {
	secret := strings.TrimSpace(os.Getenv("ROUTE_CIPHER_SECRET"))
	if len(secret) < 16 {
		return nil, fmt.Errorf("ROUTE_CIPHER_SECRET must be at least 16 characters")
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "development"
	}

	cfg := &Config{
		Addr:              valueOrDefault("PORTAL_ADDR", ":8090"),
		Env:               env,
		DesktopAPIURL:     valueOrDefault("DESKTOP_API_URL", defaultDesktopAPIRoot),
		MobileAPIURL:      valueOrDefault("MOBILE_API_URL", defaultMobileAPIRoot),
		RouteCipherSecret: secret,
		ResendAPIKey:      strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
		EscalationEmailTo: valueOrDefault("ESCALATION_EMAIL_TO", "ward-ops@wasteops.local"),
		MailerFrom: map[string]string{
			"resend": valueOrDefault("MAILER_FROM_ADDRESS_RESEND", "noreply@mail.wasteops.org"),
			"log":    valueOrDefault("MAILER_FROM_ADDRESS_LOG", "noreply@wasteops.local"),
		},
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

func (a *App) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		)
	}
}
