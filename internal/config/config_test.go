package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/jmylchreest/promoscrape/internal/acquirer"
	"github.com/jmylchreest/promoscrape/internal/extractor"
)

func loadYAML(t *testing.T, doc string) (Config, error) {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(doc)); err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}
	return Load(v)
}

// --- Default Tests ---

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
}

func TestDefault_Values(t *testing.T) {
	d := Default()
	if len(d.URLs) != 7 {
		t.Errorf("expected 7 default URLs, got %d", len(d.URLs))
	}
	if d.Limit != 250 {
		t.Errorf("Limit = %d, want 250", d.Limit)
	}
	if d.BrandID != 23 {
		t.Errorf("BrandID = %d, want 23", d.BrandID)
	}
	if d.Scroll.Timeout != 90*time.Second || d.Wait.Timeout != 30*time.Second {
		t.Errorf("unexpected timeouts: scroll=%v wait=%v", d.Scroll.Timeout, d.Wait.Timeout)
	}
}

// --- Load Tests ---

func TestLoad_EmptyUsesDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mode != "scroll" {
		t.Errorf("Mode = %q, want scroll", cfg.Mode)
	}
	if cfg.Selectors != extractor.DefaultSelectors() {
		t.Errorf("unexpected selectors: %+v", cfg.Selectors)
	}
	if cfg.Scroll.Pause != 500*time.Millisecond {
		t.Errorf("Scroll.Pause = %v", cfg.Scroll.Pause)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	cfg, err := loadYAML(t, `
urls:
  - https://shop.example.com/sale?pg=1
  - https://shop.example.com/sale?pg=2
mode: wait
limit: 40
origin: https://shop.example.com
brand_id: 7
selectors:
  card: li.product
wait:
  timeout: 10s
scroll:
  timeout: 2m
output:
  format: yaml
`)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.URLs) != 2 || cfg.URLs[1] != "https://shop.example.com/sale?pg=2" {
		t.Errorf("unexpected URLs: %v", cfg.URLs)
	}
	if cfg.Mode != "wait" || cfg.Limit != 40 || cfg.BrandID != 7 {
		t.Errorf("unexpected scalar overrides: %+v", cfg)
	}
	if cfg.Selectors.Card != "li.product" {
		t.Errorf("Selectors.Card = %q", cfg.Selectors.Card)
	}
	// Unset selectors keep their defaults.
	if cfg.Selectors.Price != extractor.DefaultSelectors().Price {
		t.Errorf("Selectors.Price = %q", cfg.Selectors.Price)
	}
	if cfg.Wait.Timeout != 10*time.Second || cfg.Scroll.Timeout != 2*time.Minute {
		t.Errorf("unexpected durations: wait=%v scroll=%v", cfg.Wait.Timeout, cfg.Scroll.Timeout)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("Output.Format = %q", cfg.Output.Format)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown mode", doc: "mode: auto\n"},
		{name: "zero limit", doc: "limit: 0\n"},
		{name: "bad url", doc: "urls: [\"not a url\"]\n"},
		{name: "empty selector", doc: "selectors:\n  discount: \"\"\n"},
		{name: "bad format", doc: "output:\n  format: csv\n"},
		{name: "negative scroll step", doc: "scroll:\n  step: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadYAML(t, tt.doc); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PROMOSCRAPE_MODE", "static")
	t.Setenv("PROMOSCRAPE_SCROLL_TIMEOUT", "45s")

	v := viper.New()
	ConfigureEnv(v)
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mode != "static" {
		t.Errorf("Mode = %q, want static", cfg.Mode)
	}
	if cfg.Scroll.Timeout != 45*time.Second {
		t.Errorf("Scroll.Timeout = %v, want 45s", cfg.Scroll.Timeout)
	}
}

// --- Conversion Tests ---

func TestCollectorConfig(t *testing.T) {
	cfg := Default()
	cfg.Mode = "wait"
	cfg.Limit = 10
	cfg.Wait.Timeout = 5 * time.Second

	cc, err := cfg.CollectorConfig()
	if err != nil {
		t.Fatalf("CollectorConfig() error = %v", err)
	}
	if cc.Mode != acquirer.ModeWait || cc.Limit != 10 {
		t.Errorf("unexpected collector config: %+v", cc)
	}
	if cc.Acquirer.WaitTimeout != 5*time.Second || cc.Acquirer.ScrollStep != 300 {
		t.Errorf("unexpected acquirer config: %+v", cc.Acquirer)
	}
}

func TestExtractorAndBrowserConfig(t *testing.T) {
	cfg := Default()
	cfg.Browser.ExecPath = "/usr/bin/chromium"

	if ec := cfg.ExtractorConfig(); ec.Origin != extractor.DefaultOrigin || ec.BrandID != 23 {
		t.Errorf("unexpected extractor config: %+v", ec)
	}
	bc := cfg.BrowserConfig()
	if bc.ExecPath != "/usr/bin/chromium" || bc.NavigateTimeout != time.Minute {
		t.Errorf("unexpected browser config: %+v", bc)
	}
}
