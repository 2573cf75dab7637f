package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Falling-dow/Jobs-NYC-Postings/common/cache"
)

func TestCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := New(cache.Options{DefaultTTL: time.Minute})

	if err := c.Set(ctx, "payload", []byte(`[{"Posting_Month":"2023-01-01"}]`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got []byte
	if err := c.Get(ctx, "payload", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `[{"Posting_Month":"2023-01-01"}]` {
		t.Errorf("Get = %q", got)
	}

	var s string
	if err := c.Get(ctx, "payload", &s); err != nil || s != string(got) {
		t.Errorf("Get(*string) = %q, %v", s, err)
	}

	if err := c.Get(ctx, "missing", &got); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrNotFound", err)
	}

	var n int
	if err := c.Get(ctx, "payload", &n); !errors.Is(err, cache.ErrInvalidValue) {
		t.Errorf("Get(*int) err = %v, want ErrInvalidValue", err)
	}
	if err := c.Set(ctx, "", "x", 0); !errors.Is(err, cache.ErrInvalidKey) {
		t.Errorf("Set(\"\") err = %v, want ErrInvalidKey", err)
	}
}

func TestCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := New(cache.Options{DefaultTTL: time.Minute})
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "a", "1", time.Second); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "b", "2", time.Hour); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Second)

	var s string
	if err := c.Get(ctx, "a", &s); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("expired Get err = %v, want ErrNotFound", err)
	}
	if removed := c.CleanExpired(); removed != 0 {
		t.Errorf("CleanExpired = %d, want 0 (a already evicted on read)", removed)
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
}

func TestCacheClosed(t *testing.T) {
	ctx := context.Background()
	c := New(cache.DefaultOptions())
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	var s string
	if err := c.Get(ctx, "a", &s); !errors.Is(err, cache.ErrClosed) {
		t.Errorf("Get after Close err = %v, want ErrClosed", err)
	}
	if err := c.Set(ctx, "a", "1", 0); !errors.Is(err, cache.ErrClosed) {
		t.Errorf("Set after Close err = %v, want ErrClosed", err)
	}
}
