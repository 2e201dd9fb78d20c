package mutation

import (
	"context"
	"sort"
	"sync"

	"github.com/hanpama/snapgraph/internal/errs"
)

// keyedLocks serializes writes per entity identity. Waiting is abortable:
// a canceled context surfaces as a conflict instead of blocking the caller
// indefinitely.
type keyedLocks struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{held: make(map[string]chan struct{})}
}

func (k *keyedLocks) acquire(ctx context.Context, key string) (release func(), err error) {
	for {
		k.mu.Lock()
		ch, taken := k.held[key]
		if !taken {
			ch = make(chan struct{})
			k.held[key] = ch
			k.mu.Unlock()
			var once sync.Once
			return func() {
				once.Do(func() {
					k.mu.Lock()
					delete(k.held, key)
					k.mu.Unlock()
					close(ch)
				})
			}, nil
		}
		k.mu.Unlock()

		select {
		case <-ch:
			// Holder released; race for it again.
		case <-ctx.Done():
			return nil, errs.New(errs.CodeConflict, "write serialization on %s aborted: %v", key, ctx.Err())
		}
	}
}

// acquireAll takes multiple identity locks in sorted order so concurrent
// multi-entity writes cannot deadlock each other.
func (k *keyedLocks) acquireAll(ctx context.Context, keys []string) (release func(), err error) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	releases := make([]func(), 0, len(sorted))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, key := range sorted {
		rel, err := k.acquire(ctx, key)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, rel)
	}
	return releaseAll, nil
}
