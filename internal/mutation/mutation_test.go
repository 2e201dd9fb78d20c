package mutation

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/snapgraph/internal/broker"
	"github.com/hanpama/snapgraph/internal/datasource/memory"
	"github.com/hanpama/snapgraph/internal/entity"
	"github.com/hanpama/snapgraph/internal/errs"
)

func newCoordinator(t *testing.T) (*Coordinator, *broker.Broker) {
	t.Helper()
	store := memory.NewStore()
	src := store.Sources()
	ctx := context.Background()
	require.NoError(t, src.Users.Put(ctx, &entity.User{GithubLogin: "gPlake"}))
	require.NoError(t, src.Users.Put(ctx, &entity.User{GithubLogin: "sSchmidt"}))

	b := broker.New(8, zerolog.Nop())
	return NewCoordinator(src, b, zerolog.Nop()), b
}

func TestPostPhotoCommitsThenPublishes(t *testing.T) {
	c, b := newCoordinator(t)
	ctx := context.Background()

	sub := b.Subscribe(ctx, broker.TopicNewPhoto, nil)
	defer sub.Close()

	photo, err := c.PostPhoto(ctx, PostPhotoInput{
		Name:     "Dropping In",
		URL:      "https://photos.example/1.jpg",
		Category: entity.CategoryAction,
		PostedBy: "gPlake",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, photo.ID)
	assert.False(t, photo.Created.IsZero())

	select {
	case ev := <-sub.Events():
		got := ev.Payload.(*entity.Photo)
		assert.Equal(t, photo.ID, got.ID)
		// The event is post-commit: the photo is already readable.
		stored, err := c.src.Photos.GetByID(ctx, got.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dropping In", stored.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("newPhoto event was not published")
	}
}

func TestPostPhotoValidation(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	_, err := c.PostPhoto(ctx, PostPhotoInput{
		Name:     "No URL",
		URL:      "not a url",
		Category: entity.CategoryAction,
		PostedBy: "gPlake",
	})
	require.Error(t, err)
	code, _ := errs.CodeOf(err)
	assert.Equal(t, errs.CodeValidation, code)

	_, err = c.PostPhoto(ctx, PostPhotoInput{
		Name:     "Ghost poster",
		URL:      "https://photos.example/2.jpg",
		Category: entity.CategoryAction,
		PostedBy: "nobody",
	})
	require.Error(t, err)
	code, _ = errs.CodeOf(err)
	assert.Equal(t, errs.CodeNotFound, code)
}

func TestAddUserConflictsOnExistingLogin(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	u, err := c.AddUser(ctx, "mEaston", "Mike Easton")
	require.NoError(t, err)
	assert.Equal(t, "mEaston", u.GithubLogin)

	_, err = c.AddUser(ctx, "mEaston", "Imposter")
	require.Error(t, err)
	code, _ := errs.CodeOf(err)
	assert.Equal(t, errs.CodeConflict, code)
}

func TestTagPhotoUnknownEndpointsNotFound(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	photo, err := c.PostPhoto(ctx, PostPhotoInput{
		Name: "Tag me", URL: "https://photos.example/3.jpg",
		Category: entity.CategoryPortrait, PostedBy: "gPlake",
	})
	require.NoError(t, err)

	tagged, err := c.TagPhoto(ctx, "sSchmidt", photo.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"sSchmidt"}, tagged.TaggedLogins)

	_, err = c.TagPhoto(ctx, "nobody", photo.ID)
	require.Error(t, err)
	code, _ := errs.CodeOf(err)
	assert.Equal(t, errs.CodeNotFound, code)
}

func TestAddFriendshipRequiresTwoExistingMembers(t *testing.T) {
	c, b := newCoordinator(t)
	ctx := context.Background()

	sub := b.Subscribe(ctx, broker.TopicNewFriendship, nil)
	defer sub.Close()

	_, err := c.AddFriendship(ctx, AddFriendshipInput{Logins: []string{"gPlake"}})
	require.Error(t, err)
	code, _ := errs.CodeOf(err)
	assert.Equal(t, errs.CodeValidation, code)

	_, err = c.AddFriendship(ctx, AddFriendshipInput{Logins: []string{"gPlake", "ghost"}})
	require.Error(t, err)
	code, _ = errs.CodeOf(err)
	assert.Equal(t, errs.CodeNotFound, code)

	f, err := c.AddFriendship(ctx, AddFriendshipInput{
		Logins: []string{"gPlake", "sSchmidt"}, HowLong: "4 years",
	})
	require.NoError(t, err)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, f.ID, ev.Payload.(*entity.Friendship).ID)
	case <-time.After(2 * time.Second):
		t.Fatal("newFriendship event was not published")
	}
}

func TestLockWaitAbortIsConflict(t *testing.T) {
	c, _ := newCoordinator(t)

	release, err := c.locks.acquire(context.Background(), "user/gPlake")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = c.PostPhoto(ctx, PostPhotoInput{
		Name: "Blocked", URL: "https://photos.example/4.jpg",
		Category: entity.CategoryAction, PostedBy: "gPlake",
	})
	require.Error(t, err)
	code, _ := errs.CodeOf(err)
	assert.Equal(t, errs.CodeConflict, code)
}
