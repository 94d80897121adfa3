package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNewRequiresLoader(t *testing.T) {
	if _, err := New[string, int](nil); !errors.Is(err, ErrNoLoader) {
		t.Fatalf("expected ErrNoLoader, got %v", err)
	}
}

func TestFetchStoresReadyEntry(t *testing.T) {
	res, err := New(func(_ context.Context, key string) (int, error) {
		return len(key), nil
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if got := res.Entry("abc").Status; got != StatusIdle {
		t.Fatalf("expected idle before load, got %q", got)
	}
	value, err := res.Fetch(context.Background(), "abc")
	if err != nil || value != 3 {
		t.Fatalf("fetch: value=%d err=%v", value, err)
	}
	entry := res.Entry("abc")
	if entry.Status != StatusReady || entry.Value != 3 {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestFetchRecordsFailure(t *testing.T) {
	boom := errors.New("offline")
	res, _ := New(func(context.Context, string) (int, error) {
		return 0, boom
	})
	if _, err := res.Fetch(context.Background(), "k"); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if entry := res.Entry("k"); entry.Status != StatusFailed || !errors.Is(entry.Err, boom) {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestLastWriteForKeyWins(t *testing.T) {
	var calls atomic.Int32
	var started sync.WaitGroup
	started.Add(2)
	gates := []chan struct{}{make(chan struct{}), make(chan struct{})}
	results := []string{"slow", "fast"}
	res, _ := New(func(_ context.Context, key string) (string, error) {
		n := calls.Add(1) - 1
		started.Done()
		<-gates[n]
		return results[n], nil
	})

	a := res.Load(context.Background(), "k")
	b := res.Load(context.Background(), "k")
	started.Wait()

	close(gates[1])
	var done <-chan Entry[string]
	select {
	case entry := <-a:
		if entry.Value != "fast" {
			t.Fatalf("expected fast result first, got %+v", entry)
		}
		done = b
	case entry := <-b:
		if entry.Value != "fast" {
			t.Fatalf("expected fast result first, got %+v", entry)
		}
		done = a
	}
	if got := res.Entry("k").Status; got != StatusLoading {
		t.Fatalf("expected loading while another request runs, got %q", got)
	}

	close(gates[0])
	<-done

	entry := res.Entry("k")
	if entry.Status != StatusReady || entry.Value != "slow" {
		t.Fatalf("expected last completion to win, got %+v", entry)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected no de-duplication, loader called %d times", calls.Load())
	}
}

func TestCurrentFollowsSelection(t *testing.T) {
	res, _ := New(func(_ context.Context, key int) (int, error) {
		return key * 10, nil
	})
	if _, _, ok := res.Current(); ok {
		t.Fatalf("expected no selection yet")
	}

	res.Select(1)
	if _, err := res.Fetch(context.Background(), 2); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	key, entry, ok := res.Current()
	if !ok || key != 1 || entry.Status != StatusIdle {
		t.Fatalf("results for other keys must not leak: key=%d entry=%+v", key, entry)
	}

	if _, err := res.Fetch(context.Background(), 1); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, entry, _ := res.Current(); entry.Value != 10 {
		t.Fatalf("expected selected value 10, got %+v", entry)
	}
}

func TestFetchHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	res, _ := New(func(ctx context.Context, _ string) (int, error) {
		<-block
		return 1, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := res.Fetch(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
