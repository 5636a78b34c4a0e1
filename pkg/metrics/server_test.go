package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/rx3lixir/book-search-service/pkg/logger"
)

func TestUptimeUpdaterStopsOnContextCancel(t *testing.T) {
	ms := NewMetricsServer(":0", logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		ms.runUptimeUpdater(ctx, "test-service", time.Millisecond)
		close(done)
	}()

	cancel()

	// Горутина обязана завершиться после отмены контекста
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("uptime updater kept running after context cancellation")
	}
}
