package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmylchreest/promoscrape/internal/acquirer"
)

var _ acquirer.Page = (*Browser)(nil)

// --- AllocatorOptions Tests ---

func TestAllocatorOptions_AppendsHardenedFlags(t *testing.T) {
	without := AllocatorOptions(DefaultConfig())
	cfg := DefaultConfig()
	cfg.ExecPath = "/usr/bin/chromium"
	with := AllocatorOptions(cfg)

	if len(with) != len(without)+1 {
		t.Errorf("expected ExecPath to add one option, got %d vs %d", len(with), len(without))
	}
}

func TestAllocatorOptions_DoesNotMutateDefaults(t *testing.T) {
	first := AllocatorOptions(DefaultConfig())
	second := AllocatorOptions(DefaultConfig())
	if len(first) != len(second) {
		t.Errorf("option count changed between calls: %d vs %d", len(first), len(second))
	}
}

// --- FindChromePath Tests ---

func TestFindChromePath_FirstMatch(t *testing.T) {
	orig := lookPath
	defer func() { lookPath = orig }()

	lookPath = func(name string) (string, error) {
		if name == "chromium" {
			return "/opt/chromium/chromium", nil
		}
		return "", errors.New("not found")
	}

	if got := FindChromePath(); got != "/opt/chromium/chromium" {
		t.Errorf("FindChromePath() = %q", got)
	}
}

func TestFindChromePath_NotFound(t *testing.T) {
	orig := lookPath
	defer func() { lookPath = orig }()

	lookPath = func(string) (string, error) { return "", errors.New("not found") }

	if got := FindChromePath(); got != "" {
		t.Errorf("FindChromePath() = %q, want empty", got)
	}
}

// --- Close Tests ---

func TestClose_Idempotent(t *testing.T) {
	calls := 0
	b := &Browser{
		cancelTab:   func() { calls++ },
		cancelAlloc: func() { calls++ },
	}

	_ = b.Close()
	_ = b.Close()

	if calls != 2 {
		t.Errorf("expected each cancel func to run once, got %d calls", calls)
	}
}

// --- Launch Tests ---

func withStartTab(t *testing.T, fn func(ctx context.Context) error) {
	t.Helper()
	orig := startTab
	startTab = fn
	t.Cleanup(func() { startTab = orig })
}

func TestLaunch_BrowserOutlivesLaunch(t *testing.T) {
	var started context.Context
	withStartTab(t, func(ctx context.Context) error {
		started = ctx
		return nil
	})

	cfg := DefaultConfig()
	cfg.ExecPath = "/usr/bin/chromium"
	b, err := Launch(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}

	// The process is bound to this context; it must still be live.
	if started.Err() != nil {
		t.Fatalf("browser context done after Launch returned: %v", started.Err())
	}
	if started != b.tabCtx {
		t.Error("browser must be started on the tab context itself")
	}

	time.Sleep(10 * time.Millisecond)
	if started.Err() != nil {
		t.Fatalf("browser context cancelled after launch: %v", started.Err())
	}

	_ = b.Close()
	if started.Err() == nil {
		t.Error("Close should cancel the browser context")
	}
}

func TestLaunch_StartError(t *testing.T) {
	var started context.Context
	withStartTab(t, func(ctx context.Context) error {
		started = ctx
		return errors.New("exec: chrome not found")
	})

	cfg := DefaultConfig()
	cfg.ExecPath = "/nonexistent/chrome"
	if _, err := Launch(context.Background(), cfg); err == nil {
		t.Fatal("expected launch error")
	}
	if started.Err() == nil {
		t.Error("a failed launch must release the browser context")
	}
}

func TestLaunch_CancelledWhileStarting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	withStartTab(t, func(tabCtx context.Context) error {
		cancel()
		<-tabCtx.Done()
		return tabCtx.Err()
	})

	cfg := DefaultConfig()
	cfg.ExecPath = "/usr/bin/chromium"
	if _, err := Launch(ctx, cfg); err == nil {
		t.Fatal("expected error when the caller cancels during launch")
	}
}
