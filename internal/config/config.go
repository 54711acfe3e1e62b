package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
		// Nombre público del sitio (título de las páginas).
		SiteName string `yaml:"site_name"`
		// URL pública base (para armar redirect targets de recovery).
		BaseURL string `yaml:"base_url"`
	} `yaml:"app"`

	Server struct {
		Addr            string `yaml:"addr"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	// Backend es el servicio hosted de auth + datos (estilo Supabase).
	Backend struct {
		URL     string `yaml:"url"`
		AnonKey string `yaml:"anon_key"`
		Timeout string `yaml:"timeout"`
	} `yaml:"backend"`

	Cache struct {
		Kind  string `yaml:"kind"` // "memory" | "redis"
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Session struct {
		CookieName string `yaml:"cookie_name"`
		TTL        string `yaml:"ttl"`
		Secure     bool   `yaml:"secure"`
	} `yaml:"session"`

	Recovery struct {
		// Ventana en la que una activación persistida sigue valiendo
		// tras un reload sin señales frescas en la URL.
		Window string `yaml:"window"`
	} `yaml:"recovery"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
		Forgot struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"forgot"`
	} `yaml:"rate"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load lee el YAML (si existe), aplica overrides de ENV y defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: leyendo %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("config: parseando %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if cfg.Backend.URL == "" {
		return nil, fmt.Errorf("config: backend.url es requerido (env LUMIFY_BACKEND_URL)")
	}
	return &cfg, nil
}

// applyEnv pisa valores con variables de entorno (prioridad sobre YAML).
func (c *Config) applyEnv() {
	setStr(&c.App.Env, "LUMIFY_ENV", "APP_ENV")
	setStr(&c.App.BaseURL, "LUMIFY_BASE_URL")
	setStr(&c.Server.Addr, "LUMIFY_ADDR")
	setStr(&c.Backend.URL, "LUMIFY_BACKEND_URL")
	setStr(&c.Backend.AnonKey, "LUMIFY_BACKEND_ANON_KEY")
	setStr(&c.Cache.Kind, "LUMIFY_CACHE_KIND")
	setStr(&c.Cache.Redis.Addr, "LUMIFY_REDIS_ADDR")
	setStr(&c.Log.Level, "LOG_LEVEL")
	if v := os.Getenv("LUMIFY_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.Redis.DB = n
		}
	}
	if v := os.Getenv("LUMIFY_RATE_ENABLED"); v != "" {
		c.Rate.Enabled = v == "true" || v == "1"
	}
}

func (c *Config) applyDefaults() {
	def(&c.App.Env, "dev")
	def(&c.App.SiteName, "Lumify")
	def(&c.Server.Addr, ":8080")
	def(&c.Server.ReadTimeout, "10s")
	def(&c.Server.WriteTimeout, "30s")
	def(&c.Server.ShutdownTimeout, "10s")
	def(&c.Backend.Timeout, "15s")
	def(&c.Cache.Kind, "memory")
	def(&c.Cache.Redis.Prefix, "lumify:")
	def(&c.Cache.Memory.DefaultTTL, "30m")
	def(&c.Session.CookieName, "lumify_sid")
	def(&c.Session.TTL, "12h")
	def(&c.Recovery.Window, "60s")
	def(&c.Rate.Login.Window, "1m")
	def(&c.Rate.Forgot.Window, "5m")
	def(&c.Log.Level, "info")
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Forgot.Limit == 0 {
		c.Rate.Forgot.Limit = 3
	}
	if c.App.BaseURL == "" {
		c.App.BaseURL = "http://localhost" + portOf(c.Server.Addr)
	}
}

// Dur parsea una duración con fallback; nunca falla en runtime.
func Dur(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func setStr(dst *string, envs ...string) {
	for _, e := range envs {
		if v := strings.TrimSpace(os.Getenv(e)); v != "" {
			*dst = v
			return
		}
	}
}

func def(dst *string, v string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = v
	}
}

func portOf(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i:]
	}
	return ":8080"
}
