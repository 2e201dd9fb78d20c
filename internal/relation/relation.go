// Package relation resolves the candidate entity sets behind relationship
// fields. It only produces candidates; list modifiers are applied afterwards
// by the caller. Lookups go through the association indexes of the data
// sources, never by scanning the object graph.
package relation

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/hanpama/snapgraph/internal/datasource"
	"github.com/hanpama/snapgraph/internal/entity"
	"github.com/hanpama/snapgraph/internal/errs"
)

// Resolver navigates relationships over a set of data sources.
type Resolver struct {
	src datasource.Store
}

func NewResolver(src datasource.Store) *Resolver {
	return &Resolver{src: src}
}

// PostedBy follows the non-null photo→user reference. A dangling reference
// is a referential integrity failure, not an empty result.
func (r *Resolver) PostedBy(ctx context.Context, photo *entity.Photo) (*entity.User, error) {
	u, err := r.src.Users.GetByLogin(ctx, photo.PostedBy)
	if err != nil {
		if errors.Is(err, datasource.ErrNotFound) {
			return nil, errs.New(errs.CodeNotFound, "photo %s: poster %q does not exist", photo.ID, photo.PostedBy)
		}
		return nil, err
	}
	return u, nil
}

// PostedPhotos returns every photo posted by the user. Zero matches is an
// empty set.
func (r *Resolver) PostedPhotos(ctx context.Context, login string) ([]*entity.Photo, error) {
	return r.src.Photos.ByPoster(ctx, login)
}

// InPhotos returns the photos the user is tagged in, deduplicated by photo
// identity.
func (r *Resolver) InPhotos(ctx context.Context, login string) ([]*entity.Photo, error) {
	photos, err := r.src.Photos.TaggedWith(ctx, login)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(photos))
	out := make([]*entity.Photo, 0, len(photos))
	for _, p := range photos {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out, nil
}

// TaggedUsers resolves the users tagged on a photo, deduplicated, in tag
// order. A tag pointing at a user that no longer exists surfaces as a
// referential integrity failure.
func (r *Resolver) TaggedUsers(ctx context.Context, photo *entity.Photo) ([]*entity.User, error) {
	logins := dedupe(photo.TaggedLogins)
	return r.fetchMembers(ctx, logins, func(login string) error {
		return errs.New(errs.CodeNotFound, "photo %s: tagged user %q does not exist", photo.ID, login)
	})
}

// Friendships returns the through-entities the user is a member of. The
// caller navigates to the other members as a separate hop.
func (r *Resolver) Friendships(ctx context.Context, login string) ([]*entity.Friendship, error) {
	return r.src.Friendships.ByMember(ctx, login)
}

// FriendshipMembers resolves the member users of a friendship. Friendships
// survive member deletion, so a dangling login is possible here and must be
// reported, never silently dropped.
func (r *Resolver) FriendshipMembers(ctx context.Context, f *entity.Friendship) ([]*entity.User, error) {
	return r.fetchMembers(ctx, dedupe(f.Logins), func(login string) error {
		return errs.New(errs.CodeNotFound, "friendship %s: member %q does not exist", f.ID, login)
	})
}

// fetchMembers loads users concurrently into identity-stable slots.
func (r *Resolver) fetchMembers(ctx context.Context, logins []string, missing func(login string) error) ([]*entity.User, error) {
	out := make([]*entity.User, len(logins))
	g, ctx := errgroup.WithContext(ctx)
	for i, login := range logins {
		g.Go(func() error {
			u, err := r.src.Users.GetByLogin(ctx, login)
			if err != nil {
				if errors.Is(err, datasource.ErrNotFound) {
					return missing(login)
				}
				return err
			}
			out[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func dedupe(logins []string) []string {
	seen := make(map[string]bool, len(logins))
	out := make([]string, 0, len(logins))
	for _, login := range logins {
		if seen[login] {
			continue
		}
		seen[login] = true
		out = append(out, login)
	}
	return out
}
