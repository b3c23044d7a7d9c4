package cache_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/flipflow/flipflow-backend/internal/cache"
)

func newStore(t *testing.T) *cache.Store {
	t.Helper()
	return cache.New(cache.Config{
		StaleTime:   time.Minute,
		BaseDelay:   time.Millisecond,
		Multiplier:  2,
		MaxDelay:    5 * time.Millisecond,
		MaxAttempts: 3,
	}, zap.NewNop())
}

func key() cache.Key {
	return cache.Key{Kind: "flipbooks", Scope: "user", ID: "7"}
}

func TestFetchCachesWithinStaleTime(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (interface{}, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := store.Fetch(ctx, key(), load)
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if got := v.([]string); len(got) != 2 {
			t.Fatalf("unexpected value: %v", got)
		}
	}

	if calls != 1 {
		t.Fatalf("loader ran %d times, want 1", calls)
	}
}

func TestFetchRetriesWithBackoff(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient")
		}
		return "ok", nil
	}

	v, err := store.Fetch(ctx, key(), load)
	if err != nil {
		t.Fatalf("Fetch failed after retries: %v", err)
	}
	if v != "ok" {
		t.Fatalf("unexpected value: %v", v)
	}
	if calls != 3 {
		t.Fatalf("loader ran %d times, want 3", calls)
	}
}

func TestFetchGivesUpAfterMaxAttempts(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (interface{}, error) {
		calls++
		return nil, errors.New("down")
	}

	if _, err := store.Fetch(ctx, key(), load); err == nil {
		t.Fatal("expected error once retries are exhausted")
	}
	if calls != 3 {
		t.Fatalf("loader ran %d times, want 3 (max attempts)", calls)
	}
}

func TestMutateSuccessReplacesOptimisticEntry(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	k := key()

	store.Set(k, []string{"existing"})

	v, err := store.Mutate(ctx, k,
		func(current interface{}, found bool) interface{} {
			return append([]string{"optimistic-temp"}, current.([]string)...)
		},
		func(context.Context) (interface{}, error) {
			return []string{"server-record", "existing"}, nil
		},
	)
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}

	want := []string{"server-record", "existing"}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("Mutate returned %v, want %v", v, want)
	}

	cached, ok := store.Get(k)
	if !ok {
		t.Fatal("key missing after successful mutation")
	}
	if !reflect.DeepEqual(cached, want) {
		t.Fatalf("cached = %v, want authoritative %v", cached, want)
	}
}

func TestMutateFailureRestoresSnapshot(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	k := key()

	snapshot := []string{"a", "b", "c"}
	store.Set(k, snapshot)

	_, err := store.Mutate(ctx, k,
		func(current interface{}, found bool) interface{} {
			return append([]string{"orphan"}, current.([]string)...)
		},
		func(context.Context) (interface{}, error) {
			return nil, errors.New("remote write failed")
		},
	)
	if err == nil {
		t.Fatal("expected commit error to propagate")
	}

	cached, ok := store.Get(k)
	if !ok {
		t.Fatal("key dropped instead of restored")
	}
	if !reflect.DeepEqual(cached, snapshot) {
		t.Fatalf("cache = %v, want pre-mutation snapshot %v", cached, snapshot)
	}
}

func TestMutateFailureOnColdKeyLeavesItCold(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	k := key()

	_, err := store.Mutate(ctx, k,
		func(current interface{}, found bool) interface{} {
			if found {
				t.Fatal("apply reported a value on a cold key")
			}
			return []string{"optimistic"}
		},
		func(context.Context) (interface{}, error) {
			return nil, errors.New("remote write failed")
		},
	)
	if err == nil {
		t.Fatal("expected commit error to propagate")
	}

	if _, ok := store.Get(k); ok {
		t.Fatal("cold key holds an orphaned optimistic entry after rollback")
	}
}

func TestMutateInvalidatesSiblingKeys(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	list := key()
	detail := cache.Key{Kind: "flipbooks", Scope: "detail", ID: "42"}
	store.Set(detail, "stale detail")

	_, err := store.Mutate(ctx, list,
		func(current interface{}, found bool) interface{} { return "optimistic" },
		func(context.Context) (interface{}, error) { return "authoritative", nil },
		detail,
	)
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}

	if _, ok := store.Get(detail); ok {
		t.Fatal("sibling key not invalidated after mutation")
	}
}

func TestStaleEntryExpires(t *testing.T) {
	store := cache.New(cache.Config{
		StaleTime:   10 * time.Millisecond,
		BaseDelay:   time.Millisecond,
		Multiplier:  2,
		MaxDelay:    5 * time.Millisecond,
		MaxAttempts: 1,
	}, zap.NewNop())

	k := key()
	store.Set(k, "value")
	time.Sleep(30 * time.Millisecond)

	if _, ok := store.Get(k); ok {
		t.Fatal("entry still fresh past its stale time")
	}
}
