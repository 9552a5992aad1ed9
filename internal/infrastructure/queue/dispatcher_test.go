package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcompute/monitoring-system/internal/core/ports"
)

type recordingTriage struct {
	mu     sync.Mutex
	events []ports.SecurityEventInput
	done   chan struct{}
}

func newRecordingTriage(expected int) *recordingTriage {
	return &recordingTriage{done: make(chan struct{}, expected)}
}

func (r *recordingTriage) Process(_ context.Context, event ports.SecurityEventInput) (*ports.TriageOutcome, error) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	r.done <- struct{}{}
	return &ports.TriageOutcome{}, nil
}

func (r *recordingTriage) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d of %d", i+1, n)
		}
	}
}

func TestDispatcher_ShardIndexDeterministic(t *testing.T) {
	d := NewDispatcher(8, nil, zerolog.Nop())

	first := d.shardIndex("web-01")
	for i := 0; i < 100; i++ {
		if got := d.shardIndex("web-01"); got != first {
			t.Fatalf("shard index changed: %d vs %d", first, got)
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard index out of range: %d", first)
	}
}

func TestDispatcher_ProcessesEnqueuedEvents(t *testing.T) {
	triage := newRecordingTriage(3)
	d := NewDispatcher(4, triage, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.SecurityEventInput{AssetID: "web-01", Category: "malware"})
	d.Enqueue(ports.SecurityEventInput{AssetID: "db-01", Category: "intrusion"})
	d.Enqueue(ports.SecurityEventInput{AssetID: "web-01", Category: "anomaly"})
	triage.wait(t, 3)

	triage.mu.Lock()
	defer triage.mu.Unlock()
	if len(triage.events) != 3 {
		t.Fatalf("expected 3 processed events, got %d", len(triage.events))
	}
}

func TestDispatcher_SameAssetKeepsOrder(t *testing.T) {
	triage := newRecordingTriage(5)
	d := NewDispatcher(8, triage, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	categories := []string{"recon", "intrusion", "malware", "exfiltration", "anomaly"}
	for _, cat := range categories {
		d.Enqueue(ports.SecurityEventInput{AssetID: "web-01", Category: cat})
	}
	triage.wait(t, 5)

	triage.mu.Lock()
	defer triage.mu.Unlock()
	for i, cat := range categories {
		if triage.events[i].Category != cat {
			t.Fatalf("event %d out of order: got %s, want %s", i, triage.events[i].Category, cat)
		}
	}
}

func TestDispatcher_EnqueueBatch(t *testing.T) {
	triage := newRecordingTriage(4)
	d := NewDispatcher(2, triage, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	batch := []ports.SecurityEventInput{
		{AssetID: "a"}, {AssetID: "b"}, {AssetID: "c"}, {AssetID: "d"},
	}
	d.EnqueueBatch(batch)
	triage.wait(t, 4)

	triage.mu.Lock()
	defer triage.mu.Unlock()
	if len(triage.events) != 4 {
		t.Fatalf("expected 4 processed events, got %d", len(triage.events))
	}
}

func TestDispatcher_Depths(t *testing.T) {
	d := NewDispatcher(0, nil, zerolog.Nop())

	depths := d.Depths()
	if len(depths) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(depths))
	}

	// Without started workers the enqueued event sits in its channel.
	d.Enqueue(ports.SecurityEventInput{AssetID: "web-01"})
	total := 0
	for _, depth := range d.Depths() {
		total += depth
	}
	if total != 1 {
		t.Fatalf("expected one queued event, got %d", total)
	}
}
