package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/realtycrm/internal/app/system/timeouts"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_IgnoresZeroValues(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{Dashboard: 42 * time.Second})

	got := timeouts.Current()
	if got.Dashboard != 42*time.Second {
		t.Errorf("Dashboard = %v, want 42s", got.Dashboard)
	}
	if got.Ping != timeouts.DefaultPing || got.Short != timeouts.DefaultShort {
		t.Errorf("zero values should keep defaults, got %+v", got)
	}

	timeouts.Reset()
	if timeouts.Dashboard() != timeouts.DefaultDashboard {
		t.Errorf("Reset did not restore Dashboard, got %v", timeouts.Dashboard())
	}
}

func TestWithTimeout_LogsDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, zap.New(core), "dashboard stats")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("expected one warning, got %d", logs.Len())
	}
	entry := logs.All()[0]
	if entry.ContextMap()["operation"] != "dashboard stats" {
		t.Errorf("operation field = %v", entry.ContextMap()["operation"])
	}
}

func TestWithTimeout_NoLogWhenCancelledEarly(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	_, cancel := timeouts.WithTimeout(context.Background(), time.Hour, zap.New(core), "dashboard stats")
	cancel()

	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %d", logs.Len())
	}
}
