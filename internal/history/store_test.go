package history

import (
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/concave-dev/guestbook/internal/batching"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestSaveGet tests that records round-trip including the report
func TestSaveGet(t *testing.T) {
	s := newTestStore(t)

	report := batching.ComputeReport([]batching.Outcome{
		{Sequence: 1, Kind: batching.KindCreateTodo, Success: true, GasUsed: 90000, Value: big.NewInt(10), Attempts: 1},
		{Sequence: 2, Kind: batching.KindPostMessage, FailureReason: "execution reverted", Attempts: 1},
	})
	submitted := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	rec := &Record{
		ID:          "a1b2c3",
		Name:        "nightly",
		Status:      StatusCompleted,
		Requested:   2,
		SubmittedAt: submitted,
		StartedAt:   submitted.Add(time.Second),
		FinishedAt:  submitted.Add(5 * time.Second),
		Report:      &report,
	}

	if err := s.Save(rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Get("a1b2c3")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	bigEqual := cmp.Comparer(func(a, b *big.Int) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.Cmp(b) == 0
	})
	if diff := cmp.Diff(rec, got, bigEqual); diff != "" {
		t.Errorf("Record mismatch (-want +got):\n%s", diff)
	}
	if got.Duration() != 4*time.Second {
		t.Errorf("Expected 4s duration, got %v", got.Duration())
	}
}

// TestGetMissing tests the not found error
func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// TestSaveUpdatesInPlace tests status transitions on the same record
func TestSaveUpdatesInPlace(t *testing.T) {
	s := newTestStore(t)
	rec := &Record{ID: "x", Status: StatusQueued, SubmittedAt: time.Now()}

	for _, st := range []Status{StatusQueued, StatusRunning, StatusInterrupted} {
		rec.Status = st
		if err := s.Save(rec); err != nil {
			t.Fatalf("Save(%s) error = %v", st, err)
		}
	}

	all, err := s.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 || all[0].Status != StatusInterrupted {
		t.Errorf("Expected one interrupted record, got %+v", all)
	}
	if !all[0].Status.Finished() {
		t.Error("Interrupted should be a finished status")
	}
}

// TestListNewestFirst tests ordering and limits
func TestListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		rec := &Record{
			ID:          fmt.Sprintf("batch-%d", i),
			Status:      StatusCompleted,
			SubmittedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.Save(rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := s.List(3)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	var ids []string
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"batch-4", "batch-3", "batch-2"}, ids); diff != "" {
		t.Errorf("List order mismatch (-want +got):\n%s", diff)
	}
}

// TestSaveRejectsIncomplete tests required fields
func TestSaveRejectsIncomplete(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(&Record{SubmittedAt: time.Now()}); err == nil {
		t.Error("Expected error for missing id")
	}
	if err := s.Save(&Record{ID: "x"}); err == nil {
		t.Error("Expected error for missing submission time")
	}
}

// TestOpenOnDisk tests persistence across reopen
func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Save(&Record{ID: "persist", Status: StatusCompleted, SubmittedAt: time.Now()}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("Reopen error = %v", err)
	}
	defer s.Close()

	if _, err := s.Get("persist"); err != nil {
		t.Errorf("Expected record after reopen, got %v", err)
	}
}
