package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Domenick1991/expertbooking/config"
	"github.com/Domenick1991/expertbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type blockingRunner struct {
	stopped atomic.Bool
}

func (r *blockingRunner) Run(ctx context.Context) error {
	<-ctx.Done()
	r.stopped.Store(true)
	return ctx.Err()
}

type failingRunner struct{}

func (failingRunner) Run(context.Context) error { return errors.New("boom") }

func testConfig() *config.Config {
	return &config.Config{HTTP: config.HTTPConfig{Address: "127.0.0.1:0"}}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &blockingRunner{}

	done := make(chan error, 1)
	go func() { done <- Run(ctx, testConfig(), zap.NewNop(), http.NotFoundHandler(), runner) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.True(t, runner.stopped.Load())
}

func TestRun_RunnerFailure(t *testing.T) {
	runner := &blockingRunner{}

	err := Run(context.Background(), testConfig(), zap.NewNop(), http.NotFoundHandler(), runner, failingRunner{})

	assert.EqualError(t, err, "boom")
	assert.True(t, runner.stopped.Load())
}

func TestOpenStorage_Memory(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Driver = config.StorageDriverMemory

	storage, err := OpenStorage(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer storage.Close()

	assert.NotNil(t, storage.Bookings)
	_, total, err := storage.Experts.List(context.Background(), domain.ExpertFilter{Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 16, total)
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Driver = "mongo"

	_, err := OpenStorage(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
