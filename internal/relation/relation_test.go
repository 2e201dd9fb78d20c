package relation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/snapgraph/internal/datasource/memory"
	"github.com/hanpama/snapgraph/internal/entity"
	"github.com/hanpama/snapgraph/internal/errs"
)

func newResolver(t *testing.T) (*Resolver, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	src := store.Sources()
	ctx := context.Background()

	require.NoError(t, src.Users.Put(ctx, &entity.User{GithubLogin: "gPlake"}))
	require.NoError(t, src.Users.Put(ctx, &entity.User{GithubLogin: "sSchmidt"}))
	require.NoError(t, src.Photos.Put(ctx, &entity.Photo{
		ID: "1", Name: "Dropping In", PostedBy: "gPlake",
		Created: time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, src.Photos.Put(ctx, &entity.Photo{
		ID: "2", Name: "Gunbarrel 25", PostedBy: "sSchmidt",
		Created: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, src.Photos.Tag(ctx, "1", "sSchmidt"))
	require.NoError(t, src.Photos.Tag(ctx, "1", "gPlake"))
	return NewResolver(src), store
}

func TestPostedByDanglingReference(t *testing.T) {
	r, _ := newResolver(t)
	ctx := context.Background()

	u, err := r.PostedBy(ctx, &entity.Photo{ID: "1", PostedBy: "gPlake"})
	require.NoError(t, err)
	assert.Equal(t, "gPlake", u.GithubLogin)

	_, err = r.PostedBy(ctx, &entity.Photo{ID: "9", PostedBy: "ghost"})
	require.Error(t, err)
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errs.CodeNotFound, code)
}

func TestPostedPhotosZeroMatchesIsEmpty(t *testing.T) {
	r, _ := newResolver(t)
	photos, err := r.PostedPhotos(context.Background(), "sSchmidt")
	require.NoError(t, err)
	require.Len(t, photos, 1)

	photos, err = r.PostedPhotos(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, photos)
	assert.NotNil(t, photos)
}

func TestTaggedUsersOrderAndDedup(t *testing.T) {
	r, store := newResolver(t)
	ctx := context.Background()

	photo, err := store.Sources().Photos.GetByID(ctx, "1")
	require.NoError(t, err)
	photo.TaggedLogins = append(photo.TaggedLogins, "sSchmidt") // duplicate tag

	users, err := r.TaggedUsers(ctx, photo)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "sSchmidt", users[0].GithubLogin)
	assert.Equal(t, "gPlake", users[1].GithubLogin)
}

func TestFriendshipMembersSurfaceDanglingLogin(t *testing.T) {
	r, store := newResolver(t)
	ctx := context.Background()
	src := store.Sources()

	require.NoError(t, src.Friendships.Put(ctx, &entity.Friendship{
		ID: "f1", Logins: []string{"gPlake", "ghost"},
	}))

	fs, err := r.Friendships(ctx, "gPlake")
	require.NoError(t, err)
	require.Len(t, fs, 1)

	_, err = r.FriendshipMembers(ctx, fs[0])
	require.Error(t, err)
	code, _ := errs.CodeOf(err)
	assert.Equal(t, errs.CodeNotFound, code)
	assert.Contains(t, err.Error(), "ghost")
}

func TestInPhotosDedupes(t *testing.T) {
	r, _ := newResolver(t)
	photos, err := r.InPhotos(context.Background(), "sSchmidt")
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "1", photos[0].ID)
}
