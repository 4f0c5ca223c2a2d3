// Package config loads and validates promoscrape settings. Values come from
// (highest first) flags, PROMOSCRAPE_* environment variables, the config
// file and the defaults below.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jmylchreest/promoscrape/internal/acquirer"
	"github.com/jmylchreest/promoscrape/internal/browser"
	"github.com/jmylchreest/promoscrape/internal/collector"
	"github.com/jmylchreest/promoscrape/internal/extractor"
)

// Config is the full runtime configuration.
type Config struct {
	URLs        []string            `mapstructure:"urls" validate:"required,min=1,dive,url"`
	Mode        string              `mapstructure:"mode" validate:"oneof=scroll wait static"`
	Limit       int                 `mapstructure:"limit" validate:"gt=0"`
	Origin      string              `mapstructure:"origin" validate:"required,url"`
	BrandID     int                 `mapstructure:"brand_id" validate:"gte=0"`
	Selectors   extractor.Selectors `mapstructure:"selectors"`
	Scroll      Scroll              `mapstructure:"scroll"`
	Wait        Wait                `mapstructure:"wait"`
	Browser     Browser             `mapstructure:"browser"`
	Output      Output              `mapstructure:"output"`
	MetricsFile string              `mapstructure:"metrics_file"`
}

// Scroll configures the scroll strategy.
type Scroll struct {
	Step          int           `mapstructure:"step" validate:"gt=0"`
	Pause         time.Duration `mapstructure:"pause" validate:"gte=0"`
	ProgressAfter time.Duration `mapstructure:"progress_after" validate:"gte=0"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// Wait configures the wait strategy.
type Wait struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// Browser configures Chrome and plain HTTP fetching.
type Browser struct {
	ExecPath        string        `mapstructure:"exec_path"`
	UserAgent       string        `mapstructure:"user_agent" validate:"required"`
	NavigateTimeout time.Duration `mapstructure:"navigate_timeout" validate:"gt=0"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
}

// Output configures where the report goes.
type Output struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format" validate:"oneof=json jsonl yaml"`
	Indent string `mapstructure:"indent"`
}

// DefaultURLs are the promotion listing pages sorted by newest first.
var DefaultURLs = []string{
	"https://www.youcom.com.br/promocao?o=descDate&pg=1",
	"https://www.youcom.com.br/promocao?o=descDate&pg=2",
	"https://www.youcom.com.br/promocao?o=descDate&pg=3",
	"https://www.youcom.com.br/promocao?o=descDate&pg=4",
	"https://www.youcom.com.br/promocao?o=descDate&pg=5",
	"https://www.youcom.com.br/promocao?o=descDate&pg=6",
	"https://www.youcom.com.br/promocao?o=descDate&pg=7",
}

// Default returns the youcom configuration.
func Default() Config {
	acq := acquirer.DefaultConfig()
	br := browser.DefaultConfig()
	return Config{
		URLs:      append([]string(nil), DefaultURLs...),
		Mode:      string(acquirer.ModeScroll),
		Limit:     collector.DefaultLimit,
		Origin:    extractor.DefaultOrigin,
		BrandID:   extractor.DefaultBrandID,
		Selectors: extractor.DefaultSelectors(),
		Scroll: Scroll{
			Step:          acq.ScrollStep,
			Pause:         acq.ScrollPause,
			ProgressAfter: acq.ProgressAfter,
			Timeout:       acq.ScrollTimeout,
		},
		Wait: Wait{Timeout: acq.WaitTimeout},
		Browser: Browser{
			UserAgent:       br.UserAgent,
			NavigateTimeout: br.NavigateTimeout,
			RequestTimeout:  acq.RequestTimeout,
		},
		Output: Output{
			Format: "json",
			Indent: "    ",
		},
	}
}

// SetDefaults registers Default() on v so that every key is known to
// viper even when absent from the config file.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("urls", d.URLs)
	v.SetDefault("mode", d.Mode)
	v.SetDefault("limit", d.Limit)
	v.SetDefault("origin", d.Origin)
	v.SetDefault("brand_id", d.BrandID)
	v.SetDefault("selectors.card", d.Selectors.Card)
	v.SetDefault("selectors.discount", d.Selectors.Discount)
	v.SetDefault("selectors.name", d.Selectors.Name)
	v.SetDefault("selectors.price", d.Selectors.Price)
	v.SetDefault("selectors.original_price", d.Selectors.OriginalPrice)
	v.SetDefault("selectors.link", d.Selectors.Link)
	v.SetDefault("selectors.image", d.Selectors.Image)
	v.SetDefault("scroll.step", d.Scroll.Step)
	v.SetDefault("scroll.pause", d.Scroll.Pause)
	v.SetDefault("scroll.progress_after", d.Scroll.ProgressAfter)
	v.SetDefault("scroll.timeout", d.Scroll.Timeout)
	v.SetDefault("wait.timeout", d.Wait.Timeout)
	v.SetDefault("browser.exec_path", d.Browser.ExecPath)
	v.SetDefault("browser.user_agent", d.Browser.UserAgent)
	v.SetDefault("browser.navigate_timeout", d.Browser.NavigateTimeout)
	v.SetDefault("browser.request_timeout", d.Browser.RequestTimeout)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.indent", d.Output.Indent)
	v.SetDefault("metrics_file", d.MetricsFile)
}

// ConfigureEnv maps nested keys to PROMOSCRAPE_* variables, e.g.
// scroll.timeout -> PROMOSCRAPE_SCROLL_TIMEOUT.
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix("PROMOSCRAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for coherence.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ExtractorConfig returns the extractor settings.
func (c Config) ExtractorConfig() extractor.Config {
	return extractor.Config{
		Selectors: c.Selectors,
		Origin:    c.Origin,
		BrandID:   c.BrandID,
	}
}

// AcquirerConfig returns the settings shared by all strategies.
func (c Config) AcquirerConfig() acquirer.Config {
	return acquirer.Config{
		ScrollStep:     c.Scroll.Step,
		ScrollPause:    c.Scroll.Pause,
		ProgressAfter:  c.Scroll.ProgressAfter,
		ScrollTimeout:  c.Scroll.Timeout,
		WaitTimeout:    c.Wait.Timeout,
		UserAgent:      c.Browser.UserAgent,
		RequestTimeout: c.Browser.RequestTimeout,
	}
}

// BrowserConfig returns the Chrome launch settings.
func (c Config) BrowserConfig() browser.Config {
	cfg := browser.DefaultConfig()
	cfg.ExecPath = c.Browser.ExecPath
	cfg.UserAgent = c.Browser.UserAgent
	cfg.NavigateTimeout = c.Browser.NavigateTimeout
	return cfg
}

// CollectorConfig returns the orchestration settings.
func (c Config) CollectorConfig() (collector.Config, error) {
	mode, err := acquirer.ParseMode(c.Mode)
	if err != nil {
		return collector.Config{}, err
	}
	return collector.Config{
		Mode:     mode,
		Limit:    c.Limit,
		Acquirer: c.AcquirerConfig(),
	}, nil
}
