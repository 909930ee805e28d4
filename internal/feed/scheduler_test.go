package feed

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/marketpulse/pulse/internal/core"
)

func TestRotate(t *testing.T) {
	symbols := []string{"A", "B", "C", "D", "E"}

	batch, idx := rotate(symbols, 0, 2)
	if !reflect.DeepEqual(batch, []string{"A", "B"}) || idx != 2 {
		t.Errorf("first batch = %v, idx %d", batch, idx)
	}
	batch, idx = rotate(symbols, idx, 2)
	if !reflect.DeepEqual(batch, []string{"C", "D"}) || idx != 4 {
		t.Errorf("second batch = %v, idx %d", batch, idx)
	}
	// Wraps around the end.
	batch, idx = rotate(symbols, idx, 2)
	if !reflect.DeepEqual(batch, []string{"E", "A"}) || idx != 1 {
		t.Errorf("wrapping batch = %v, idx %d", batch, idx)
	}

	// Batch larger than the universe covers it exactly once.
	batch, _ = rotate(symbols, 0, 10)
	if len(batch) != 5 {
		t.Errorf("oversized batch = %v", batch)
	}

	if batch, _ := rotate(nil, 0, 3); batch != nil {
		t.Errorf("empty universe batch = %v", batch)
	}
}

func TestScheduler_CyclesBroadcast(t *testing.T) {
	svc, hub := newTestService(t, &countingFetcher{})

	var mu sync.Mutex
	var quoteBroadcasts int
	var lastQuotes []core.QuoteSnapshot
	defer hub.SubscribeQuotes(func(quotes []core.QuoteSnapshot) {
		mu.Lock()
		quoteBroadcasts++
		lastQuotes = quotes
		mu.Unlock()
	})()

	s := NewScheduler(svc,
		WithIntervals(5*time.Millisecond, 8*time.Millisecond, 7*time.Millisecond),
		WithBatchSizes(2, 1),
	)
	s.Start(context.Background())
	time.Sleep(80 * time.Millisecond)
	s.Stop()

	mu.Lock()
	defer mu.Unlock()
	if quoteBroadcasts == 0 {
		t.Fatal("no quote broadcasts observed")
	}
	if len(lastQuotes) == 0 {
		t.Fatal("broadcast carried no quotes")
	}
	// Rotation eventually touches every symbol.
	seen := map[string]bool{}
	for _, q := range lastQuotes {
		seen[q.Symbol] = true
	}
	if len(seen) != len(testFixture) {
		t.Errorf("only %d symbols refreshed after rotation: %v", len(seen), seen)
	}
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t, &countingFetcher{})
	s := NewScheduler(svc, WithIntervals(time.Millisecond, time.Millisecond, time.Millisecond))

	s.Start(context.Background())
	s.Stop()
	s.Stop()

	// Restart works after a full stop.
	s.Start(context.Background())
	s.Stop()
}
