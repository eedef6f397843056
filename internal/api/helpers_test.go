package api

import (
	"context"
	"math/big"
	"testing"

	"github.com/concave-dev/guestbook/internal/api/dispatch"
	"github.com/concave-dev/guestbook/internal/chain"
	"github.com/concave-dev/guestbook/internal/history"
)

// stubDispatcher accepts every job without running it
type stubDispatcher struct {
	jobs []dispatch.Job
}

func (d *stubDispatcher) Enqueue(job dispatch.Job) (*history.Record, error) {
	d.jobs = append(d.jobs, job)
	rec := *job.Record
	rec.Status = history.StatusQueued
	rec.Requested = job.Size()
	return &rec, nil
}

func (d *stubDispatcher) GetMetrics() map[string]int64 {
	return map[string]int64{"queue_size": int64(len(d.jobs)), "queue_cap": 16}
}

// stubChain serves a fixed guestbook state
type stubChain struct{}

func (stubChain) Stats(ctx context.Context) (*chain.Stats, error) {
	return &chain.Stats{ChainID: big.NewInt(1337), TotalMessages: big.NewInt(3)}, nil
}

func (stubChain) RecentMessages(ctx context.Context, n int) ([]chain.Message, error) {
	return []chain.Message{{Index: 2, Name: "Alice", Body: "gm"}}, nil
}

func newTestHistory(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestConfig(t *testing.T) *Config {
	return &Config{
		BindAddr:   "127.0.0.1",
		BindPort:   8088,
		Dispatcher: &stubDispatcher{},
		History:    newTestHistory(t),
		Chain:      stubChain{},
	}
}
