package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/lumify/internal/authclient"
	"github.com/dropDatabas3/lumify/internal/cache"
	"github.com/dropDatabas3/lumify/internal/config"
	"github.com/dropDatabas3/lumify/internal/finance"
	httpx "github.com/dropDatabas3/lumify/internal/http"
	"github.com/dropDatabas3/lumify/internal/http/handlers"
	"github.com/dropDatabas3/lumify/internal/http/router"
	"github.com/dropDatabas3/lumify/internal/observability/logger"
	"github.com/dropDatabas3/lumify/internal/rate"
	"github.com/dropDatabas3/lumify/internal/recovery"
	"github.com/dropDatabas3/lumify/internal/resetflow"
	"github.com/dropDatabas3/lumify/internal/routeguard"
	"github.com/dropDatabas3/lumify/internal/session"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	var cfgPath string

	root := &cobra.Command{
		Use:   "lumify",
		Short: "Lumify - frontend web de finanzas personales",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", envOr("LUMIFY_CONFIG", "config.yaml"), "ruta del config YAML")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Arranca el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfgPath)
		},
	}

	ver := &cobra.Command{
		Use:   "version",
		Short: "Muestra la versión",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("lumify", version)
		},
	}

	root.AddCommand(serve, ver)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "lumify",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()

	store, err := cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: config.Dur(cfg.Cache.Memory.DefaultTTL, 0),
	})
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	sessions := &session.Manager{
		Store:      store,
		CookieName: cfg.Session.CookieName,
		TTL:        config.Dur(cfg.Session.TTL, 0),
		Secure:     cfg.Session.Secure,
	}

	auth := authclient.NewHTTP(cfg.Backend.URL, cfg.Backend.AnonKey,
		config.Dur(cfg.Backend.Timeout, 0))

	recoveryStore := &recovery.Store{
		ResetPath:  routeguard.PathReset,
		Window:     config.Dur(cfg.Recovery.Window, 0),
		OnActivate: httpx.CountRecoveryActivation,
	}

	interceptor := &recovery.Interceptor{
		RootPath:         routeguard.PathRoot,
		ResetPath:        routeguard.PathReset,
		OnRepairRedirect: httpx.CountRepairRedirect,
		OnDetect:         httpx.CountRecoveryActivation,
	}

	// Eventos asincrónicos del backend → store de recovery. Un evento
	// tardío re-aplica una activación idéntica; es inofensivo.
	unsubscribe := auth.SubscribeAuthEvents(func(evt authclient.Event) {
		sess := sessions.ByID(evt.SessionID)
		if sess == nil {
			return
		}
		var u *url.URL
		if evt.CurrentURL != "" {
			u, _ = url.Parse(evt.CurrentURL)
		}
		recoveryStore.ApplyAuthEvent(context.Background(), sess, evt.Kind, u)
	})
	defer unsubscribe()

	var loginLimiter, forgotLimiter rate.Limiter = rate.Noop{}, rate.Noop{}
	if cfg.Rate.Enabled {
		loginLimiter = rate.NewFixedWindow(store, "rl:login:",
			cfg.Rate.Login.Limit, config.Dur(cfg.Rate.Login.Window, 0))
		forgotLimiter = rate.NewFixedWindow(store, "rl:forgot:",
			cfg.Rate.Forgot.Limit, config.Dur(cfg.Rate.Forgot.Window, 0))
	}

	render, err := handlers.NewRenderer(cfg.App.SiteName)
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}

	deps := router.Deps{
		Sessions:    sessions,
		Auth:        auth,
		Interceptor: interceptor,
		Recovery:    recoveryStore,
		Pages: &handlers.PagesHandler{
			Render:  render,
			Finance: finance.NewClient(cfg.Backend.URL, cfg.Backend.AnonKey, config.Dur(cfg.Backend.Timeout, 0)),
		},
		Forms: &handlers.AuthHandler{
			Auth:          auth,
			BaseURL:       cfg.App.BaseURL,
			LoginLimiter:  loginLimiter,
			ForgotLimiter: forgotLimiter,
		},
		Reset: &handlers.ResetHandler{
			Render: render,
			Flow:   &resetflow.Controller{Auth: auth, Recovery: recoveryStore},
		},
	}

	srv := &httpx.Server{
		Addr:            cfg.Server.Addr,
		Handler:         router.New(deps),
		ReadTimeout:     config.Dur(cfg.Server.ReadTimeout, 0),
		WriteTimeout:    config.Dur(cfg.Server.WriteTimeout, 0),
		ShutdownTimeout: config.Dur(cfg.Server.ShutdownTimeout, 0),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.L().Info("lumify starting",
		logger.String("env", cfg.App.Env),
		logger.String("backend", cfg.Backend.URL))
	return srv.Run(ctx)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
