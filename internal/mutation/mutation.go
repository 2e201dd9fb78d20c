// Package mutation coordinates writes: input validation, per-identity
// serialization, the atomic data source write, and post-commit event
// publication. Subscribers are notified only after the write is durable, and
// publication never feeds back into the commit path.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hanpama/snapgraph/internal/broker"
	"github.com/hanpama/snapgraph/internal/datasource"
	"github.com/hanpama/snapgraph/internal/entity"
	"github.com/hanpama/snapgraph/internal/errs"
	"github.com/hanpama/snapgraph/internal/eventbus"
	"github.com/hanpama/snapgraph/internal/events"
)

// PostPhotoInput is the validated payload of the postPhoto mutation.
// Category arrives pre-defaulted by argument coercion.
type PostPhotoInput struct {
	Name        string               `validate:"required"`
	URL         string               `validate:"required,url"`
	Description string               ``
	Category    entity.PhotoCategory `validate:"required,oneof=SELFIE PORTRAIT ACTION LANDSCAPE GRAPHIC"`
	PostedBy    string               `validate:"required"`
}

// AddFriendshipInput is the validated payload of the addFriendship mutation.
type AddFriendshipInput struct {
	Logins     []string `validate:"min=2,unique,dive,required"`
	HowLong    string   ``
	WhereWeMet string   ``
}

// Coordinator owns all writes against the data sources.
type Coordinator struct {
	src      datasource.Store
	broker   *broker.Broker
	validate *validator.Validate
	locks    *keyedLocks
	log      zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewCoordinator(src datasource.Store, b *broker.Broker, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		src:      src,
		broker:   b,
		validate: validator.New(),
		locks:    newKeyedLocks(),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// PostPhoto stores a new photo for an existing user and announces it on the
// newPhoto topic.
func (c *Coordinator) PostPhoto(ctx context.Context, in PostPhotoInput) (*entity.Photo, error) {
	if err := c.validate.Struct(in); err != nil {
		return nil, errs.Wrap(errs.CodeValidation, err)
	}

	release, err := c.locks.acquire(ctx, "user/"+in.PostedBy)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := c.src.Users.GetByLogin(ctx, in.PostedBy); err != nil {
		if errors.Is(err, datasource.ErrNotFound) {
			return nil, errs.New(errs.CodeNotFound, "poster %q does not exist", in.PostedBy)
		}
		return nil, err
	}

	photo := &entity.Photo{
		ID:          c.newID(),
		Name:        in.Name,
		URL:         in.URL,
		Description: in.Description,
		Category:    in.Category,
		Created:     c.now(),
		PostedBy:    in.PostedBy,
	}
	if err := c.src.Photos.Put(ctx, photo); err != nil {
		return nil, fmt.Errorf("post photo: %w", err)
	}

	c.log.Info().Str("photo", photo.ID).Str("postedBy", photo.PostedBy).Msg("photo posted")
	eventbus.Publish(ctx, events.PhotoPosted{PhotoID: photo.ID, PostedBy: photo.PostedBy, Category: string(photo.Category)})
	c.broker.Publish(ctx, broker.TopicNewPhoto, photo)
	return photo, nil
}

// AddUser registers a new user. The login is the immutable identity; taking
// one that exists is a conflict, not an update.
func (c *Coordinator) AddUser(ctx context.Context, login, name string) (*entity.User, error) {
	user := &entity.User{GithubLogin: login, Name: name}
	if err := c.validate.Struct(user); err != nil {
		return nil, errs.Wrap(errs.CodeValidation, err)
	}

	release, err := c.locks.acquire(ctx, "user/"+login)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := c.src.Users.GetByLogin(ctx, login); err == nil {
		return nil, errs.New(errs.CodeConflict, "user %q already exists", login)
	} else if !errors.Is(err, datasource.ErrNotFound) {
		return nil, err
	}

	if err := c.src.Users.Put(ctx, user); err != nil {
		return nil, fmt.Errorf("add user: %w", err)
	}

	c.log.Info().Str("user", login).Msg("user joined")
	eventbus.Publish(ctx, events.UserJoined{GithubLogin: login})
	c.broker.Publish(ctx, broker.TopicNewUser, user)
	return user, nil
}

// TagPhoto associates a user with a photo. Tagging is idempotent; tagging an
// unknown photo or user is a referential failure.
func (c *Coordinator) TagPhoto(ctx context.Context, login, photoID string) (*entity.Photo, error) {
	if login == "" || photoID == "" {
		return nil, errs.New(errs.CodeValidation, "githubLogin and photoID are required")
	}

	release, err := c.locks.acquire(ctx, "photo/"+photoID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := c.src.Photos.Tag(ctx, photoID, login); err != nil {
		if errors.Is(err, datasource.ErrNotFound) {
			return nil, errs.New(errs.CodeNotFound, "cannot tag %q on photo %s: no such photo or user", login, photoID)
		}
		return nil, fmt.Errorf("tag photo: %w", err)
	}

	photo, err := c.src.Photos.GetByID(ctx, photoID)
	if err != nil {
		return nil, fmt.Errorf("tag photo: %w", err)
	}
	c.log.Info().Str("photo", photoID).Str("user", login).Msg("photo tagged")
	return photo, nil
}

// AddFriendship creates the through-entity connecting two or more existing
// users and announces it on the newFriendship topic.
func (c *Coordinator) AddFriendship(ctx context.Context, in AddFriendshipInput) (*entity.Friendship, error) {
	if err := c.validate.Struct(in); err != nil {
		return nil, errs.Wrap(errs.CodeValidation, err)
	}

	keys := make([]string, len(in.Logins))
	for i, login := range in.Logins {
		keys[i] = "user/" + login
	}
	release, err := c.locks.acquireAll(ctx, keys)
	if err != nil {
		return nil, err
	}
	defer release()

	for _, login := range in.Logins {
		if _, err := c.src.Users.GetByLogin(ctx, login); err != nil {
			if errors.Is(err, datasource.ErrNotFound) {
				return nil, errs.New(errs.CodeNotFound, "member %q does not exist", login)
			}
			return nil, err
		}
	}

	f := &entity.Friendship{
		ID:         c.newID(),
		Logins:     append([]string(nil), in.Logins...),
		HowLong:    in.HowLong,
		WhereWeMet: in.WhereWeMet,
	}
	if err := c.src.Friendships.Put(ctx, f); err != nil {
		return nil, fmt.Errorf("add friendship: %w", err)
	}

	c.log.Info().Str("friendship", f.ID).Strs("logins", f.Logins).Msg("friendship formed")
	eventbus.Publish(ctx, events.FriendshipFormed{FriendshipID: f.ID, Logins: f.Logins})
	c.broker.Publish(ctx, broker.TopicNewFriendship, f)
	return f, nil
}
