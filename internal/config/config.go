package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App      AppConfig
	Webhook  WebhookConfig
	Frontend FrontendConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type WebhookConfig struct {
	// URL is the initial outbound webhook target. Empty means the
	// process starts with no webhook configured.
	URL string

	// Timeout bounds every outbound delivery attempt.
	Timeout time.Duration
}

type FrontendConfig struct {
	// Origins lists the trusted frontend origins. Requests carrying one
	// of these in the Origin header are exempt from inbound tracking
	// and allowed by CORS.
	Origins []string
}

// Defaults chosen for local demo usage; production deployments are
// expected to set everything explicitly.
const (
	defaultEnv            = "local"
	defaultPort           = 8000
	defaultWebhookURL     = "http://localhost:8001/api/webhooks/third-party/sync"
	defaultWebhookTimeout = 5 * time.Second
)

var defaultFrontendOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	if c.App.Env == "" {
		c.App.Env = defaultEnv
	}
	{
		n, err := optionalInt("APP_PORT", defaultPort)
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.App.Port = n
	}

	// WEBHOOK_URL unset -> demo default; WEBHOOK_URL="" -> start unconfigured.
	if v, ok := os.LookupEnv("WEBHOOK_URL"); ok {
		c.Webhook.URL = strings.TrimSpace(v)
	} else {
		c.Webhook.URL = defaultWebhookURL
	}
	{
		d, err := optionalDuration("WEBHOOK_TIMEOUT", defaultWebhookTimeout)
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.Webhook.Timeout = d
	}

	if v := strings.TrimSpace(os.Getenv("FRONTEND_ORIGINS")); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Frontend.Origins = append(c.Frontend.Origins, o)
			}
		}
	} else {
		c.Frontend.Origins = append([]string(nil), defaultFrontendOrigins...)
	}

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error

	if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.Webhook.URL != "" {
		if err := validateHTTPURL(c.Webhook.URL); err != nil {
			errs = append(errs, fmt.Errorf("WEBHOOK_URL: %w", err))
		}
	}
	if c.Webhook.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("WEBHOOK_TIMEOUT must be positive, got %s", c.Webhook.Timeout))
	}

	if len(c.Frontend.Origins) == 0 {
		errs = append(errs, errors.New("FRONTEND_ORIGINS must list at least one origin"))
	}
	for _, o := range c.Frontend.Origins {
		if err := validateHTTPURL(o); err != nil {
			errs = append(errs, fmt.Errorf("FRONTEND_ORIGINS entry %q: %w", o, err))
		}
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("URL must be absolute")
	}
	return nil
}

func optionalInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optionalDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration, got %q", key, v)
	}
	return d, nil
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
