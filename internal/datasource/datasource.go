// Package datasource declares the narrow contracts the engine queries and
// mutates entities through. Implementations must make each call atomic; the
// engine layers its own per-identity serialization on top for multi-step
// mutations.
package datasource

import (
	"context"
	"errors"

	"github.com/hanpama/snapgraph/internal/entity"
)

// ErrNotFound is returned by identity lookups that miss. Relationship
// lookups that legitimately find zero matches return empty sets, not this.
var ErrNotFound = errors.New("datasource: not found")

// ErrConflict is returned when a write loses a serialization race, such as a
// put against an entity modified since it was read.
var ErrConflict = errors.New("datasource: conflict")

// PhotoQuery is the predicate-describable filter for PhotoSource.Where.
// SQL-backed sources translate it into a WHERE clause; in-memory sources
// evaluate it with the same predicate logic the list engine uses.
type PhotoQuery struct {
	Filter   *entity.PhotoFilter
	PostedBy string // non-empty restricts to one poster
}

// UserSource stores users keyed by their immutable githubLogin.
type UserSource interface {
	GetByLogin(ctx context.Context, login string) (*entity.User, error)
	All(ctx context.Context) ([]*entity.User, error)
	Count(ctx context.Context) (int, error)
	Put(ctx context.Context, u *entity.User) error
}

// PhotoSource stores photos and the photo↔user tagging association.
// Tag is idempotent: repeated rows never produce duplicate associations.
type PhotoSource interface {
	GetByID(ctx context.Context, id string) (*entity.Photo, error)
	All(ctx context.Context) ([]*entity.Photo, error)
	Where(ctx context.Context, q PhotoQuery) ([]*entity.Photo, error)
	ByPoster(ctx context.Context, login string) ([]*entity.Photo, error)
	TaggedWith(ctx context.Context, login string) ([]*entity.Photo, error)
	Count(ctx context.Context) (int, error)
	Put(ctx context.Context, p *entity.Photo) error
	Tag(ctx context.Context, photoID, login string) error
}

// FriendshipSource stores through-entities keyed by id and indexed by member.
type FriendshipSource interface {
	GetByID(ctx context.Context, id string) (*entity.Friendship, error)
	All(ctx context.Context) ([]*entity.Friendship, error)
	ByMember(ctx context.Context, login string) ([]*entity.Friendship, error)
	Put(ctx context.Context, f *entity.Friendship) error
}

// AgendaSource supplies the polymorphic agenda family.
type AgendaSource interface {
	All(ctx context.Context) ([]entity.AgendaItem, error)
}

// Store bundles the per-entity sources an engine instance runs against.
type Store struct {
	Users       UserSource
	Photos      PhotoSource
	Friendships FriendshipSource
	Agenda      AgendaSource
}
