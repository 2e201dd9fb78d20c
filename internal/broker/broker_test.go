package broker

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/snapgraph/internal/entity"
	"github.com/hanpama/snapgraph/internal/listops"
)

func newBroker(queueSize int) *Broker {
	return New(queueSize, zerolog.Nop())
}

func drain(t *testing.T, sub *Subscription, n int) []Event {
	t.Helper()
	out := make([]Event, 0, n)
	for len(out) < n {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				t.Fatalf("channel closed after %d of %d events", len(out), n)
			}
			out = append(out, ev)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d events", len(out), n)
		}
	}
	return out
}

func TestCategoryFilterSelectsEvents(t *testing.T) {
	b := newBroker(8)
	ctx := context.Background()

	want := entity.CategoryAction
	sub := b.Subscribe(ctx, TopicNewPhoto, func(payload any) bool {
		p, ok := payload.(*entity.Photo)
		return ok && listops.MatchPhoto(&entity.PhotoFilter{Category: &want}, p)
	})
	defer sub.Close()

	b.Publish(ctx, TopicNewPhoto, &entity.Photo{ID: "1", Category: entity.CategorySelfie})
	b.Publish(ctx, TopicNewPhoto, &entity.Photo{ID: "2", Category: entity.CategoryAction})
	b.Publish(ctx, TopicNewPhoto, &entity.Photo{ID: "3", Category: entity.CategoryAction})

	got := drain(t, sub, 2)
	assert.Equal(t, "2", got[0].Payload.(*entity.Photo).ID)
	assert.Equal(t, "3", got[1].Payload.(*entity.Photo).ID)
}

func TestOverflowDropsOldest(t *testing.T) {
	b := newBroker(2)
	ctx := context.Background()

	sub := b.Subscribe(ctx, TopicNewUser, nil)
	defer sub.Close()

	for _, login := range []string{"a", "b", "c", "d"} {
		b.Publish(ctx, TopicNewUser, &entity.User{GithubLogin: login})
	}

	// Queue capacity 2: "a" and "b" were evicted to admit "c" and "d".
	got := drain(t, sub, 2)
	assert.Equal(t, "c", got[0].Payload.(*entity.User).GithubLogin)
	assert.Equal(t, "d", got[1].Payload.(*entity.User).GithubLogin)
	assert.Empty(t, sub.Events())
}

func TestPublishNeverBlocks(t *testing.T) {
	b := newBroker(1)
	ctx := context.Background()

	sub := b.Subscribe(ctx, TopicNewUser, nil)
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			b.Publish(ctx, TopicNewUser, &entity.User{GithubLogin: "x"})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestCloseDeregistersImmediately(t *testing.T) {
	b := newBroker(4)
	ctx := context.Background()

	sub := b.Subscribe(ctx, TopicNewFriendship, nil)
	require.Equal(t, 1, b.SubscriberCount(TopicNewFriendship))

	sub.Close()
	assert.Equal(t, 0, b.SubscriberCount(TopicNewFriendship))

	b.Publish(ctx, TopicNewFriendship, &entity.Friendship{ID: "f1"})
	_, ok := <-sub.Events()
	assert.False(t, ok, "closed subscription channel must be closed")

	// Close is idempotent.
	sub.Close()
}

func TestContextCancelDeregisters(t *testing.T) {
	b := newBroker(4)
	ctx, cancel := context.WithCancel(context.Background())

	b.Subscribe(ctx, TopicNewUser, nil)
	require.Equal(t, 1, b.SubscriberCount(TopicNewUser))

	cancel()
	assert.Eventually(t, func() bool {
		return b.SubscriberCount(TopicNewUser) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPerSubscriberOrdering(t *testing.T) {
	b := newBroker(64)
	ctx := context.Background()

	sub := b.Subscribe(ctx, TopicNewPhoto, nil)
	defer sub.Close()

	for i := 0; i < 50; i++ {
		b.Publish(ctx, TopicNewPhoto, i)
	}
	got := drain(t, sub, 50)
	for i, ev := range got {
		require.Equal(t, i, ev.Payload)
	}
}
