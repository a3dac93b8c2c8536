package config

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bpbdbogor/portal/internal/model"
)

func TestLazyStoreOpensOnceUnderConcurrency(t *testing.T) {
	var opens atomic.Int32
	lazy := NewLazyStore(func(ctx context.Context) (*Store, error) {
		opens.Add(1)
		time.Sleep(20 * time.Millisecond) // widen the race window
		return NewStore("")
	})
	t.Cleanup(func() { lazy.Close() })

	const workers = 32
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := lazy.FindAdminByUsername(context.Background(), "admin")
			if err != nil && !errors.Is(err, ErrNotFound) {
				errs <- err
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected lookup error: %v", err)
	}
	if got := opens.Load(); got != 1 {
		t.Errorf("opener called %d times, want 1", got)
	}
	if !lazy.Initialized() {
		t.Error("expected store to be initialized")
	}
}

func TestLazyStoreRetriesAfterFailedOpen(t *testing.T) {
	var opens atomic.Int32
	lazy := NewLazyStore(func(ctx context.Context) (*Store, error) {
		if opens.Add(1) == 1 {
			return nil, errors.New("database unavailable")
		}
		return NewStore("")
	})
	t.Cleanup(func() { lazy.Close() })

	if _, err := lazy.Get(context.Background()); err == nil {
		t.Fatal("expected first Get to fail")
	}
	if lazy.Initialized() {
		t.Fatal("store should not be initialized after a failed open")
	}

	s, err := lazy.Get(context.Background())
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if err := s.CreateAdmin(context.Background(), &model.Admin{Username: "admin", PasswordHash: "x"}); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if _, err := lazy.FindAdminByUsername(context.Background(), "admin"); err != nil {
		t.Errorf("FindAdminByUsername: %v", err)
	}
	if got := opens.Load(); got != 2 {
		t.Errorf("opener called %d times, want 2", got)
	}
}

func TestLazyStoreCloseBeforeOpen(t *testing.T) {
	lazy := NewLazyStore(func(ctx context.Context) (*Store, error) {
		t.Error("opener must not run on Close")
		return nil, nil
	})
	if err := lazy.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
