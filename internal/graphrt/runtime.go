// Package graphrt binds the execution engine to the photo graph: it owns the
// schema registry, resolves fields against the data sources and the
// relationship resolver, applies the list modifiers, and dispatches abstract
// types through their runtime type tags.
package graphrt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hanpama/snapgraph/internal/args"
	"github.com/hanpama/snapgraph/internal/datasource"
	"github.com/hanpama/snapgraph/internal/entity"
	"github.com/hanpama/snapgraph/internal/errs"
	"github.com/hanpama/snapgraph/internal/executor"
	"github.com/hanpama/snapgraph/internal/listops"
	"github.com/hanpama/snapgraph/internal/mutation"
	"github.com/hanpama/snapgraph/internal/relation"
)

type resolverFunc func(ctx context.Context, source any, argv map[string]any) (any, error)

// Runtime implements executor.Runtime over the photo graph.
type Runtime struct {
	src datasource.Store
	rel *relation.Resolver
	mut *mutation.Coordinator
	log zerolog.Logger

	resolvers map[string]map[string]resolverFunc
}

var _ executor.Runtime = (*Runtime)(nil)

func New(src datasource.Store, mut *mutation.Coordinator, log zerolog.Logger) *Runtime {
	r := &Runtime{
		src: src,
		rel: relation.NewResolver(src),
		mut: mut,
		log: log,
	}
	r.resolvers = map[string]map[string]resolverFunc{
		"Query": {
			"totalUsers":  r.queryTotalUsers,
			"totalPhotos": r.queryTotalPhotos,
			"allUsers":    r.queryAllUsers,
			"allPhotos":   r.queryAllPhotos,
			"user":        r.queryUser,
			"photo":       r.queryPhoto,
			"agenda":      r.queryAgenda,
			"schedule":    r.queryAgenda,
		},
		"Mutation": {
			"postPhoto":     r.mutatePostPhoto,
			"addUser":       r.mutateAddUser,
			"tagPhoto":      r.mutateTagPhoto,
			"addFriendship": r.mutateAddFriendship,
		},
		"Subscription": {
			"newPhoto":      passthroughPayload[*entity.Photo]("newPhoto"),
			"newUser":       passthroughPayload[*entity.User]("newUser"),
			"newFriendship": passthroughPayload[*entity.Friendship]("newFriendship"),
		},
		"User": {
			"githubLogin":  attr(func(u *entity.User) any { return u.GithubLogin }),
			"name":         attr(func(u *entity.User) any { return optional(u.Name) }),
			"avatar":       attr(func(u *entity.User) any { return optional(u.Avatar) }),
			"postedPhotos": r.userPostedPhotos,
			"inPhotos":     r.userInPhotos,
			"friendships":  r.userFriendships,
		},
		"Photo": {
			"id":          attr(func(p *entity.Photo) any { return p.ID }),
			"name":        attr(func(p *entity.Photo) any { return p.Name }),
			"url":         attr(func(p *entity.Photo) any { return p.URL }),
			"description": attr(func(p *entity.Photo) any { return optional(p.Description) }),
			"category":    attr(func(p *entity.Photo) any { return p.Category }),
			"created":     attr(func(p *entity.Photo) any { return p.Created }),
			"postedBy":    r.photoPostedBy,
			"taggedUsers": r.photoTaggedUsers,
		},
		"Friendship": {
			"id":         attr(func(f *entity.Friendship) any { return f.ID }),
			"howLong":    attr(func(f *entity.Friendship) any { return optional(f.HowLong) }),
			"whereWeMet": attr(func(f *entity.Friendship) any { return optional(f.WhereWeMet) }),
			"members":    r.friendshipMembers,
		},
		"StudyGroup": {
			"name":         attr(func(g entity.StudyGroup) any { return g.Name }),
			"start":        attr(func(g entity.StudyGroup) any { return g.Start }),
			"end":          attr(func(g entity.StudyGroup) any { return g.End }),
			"topic":        attr(func(g entity.StudyGroup) any { return g.Topic }),
			"participants": attr(func(g entity.StudyGroup) any { return g.Participants }),
		},
		"Workout": {
			"name":    attr(func(w entity.Workout) any { return w.Name }),
			"start":   attr(func(w entity.Workout) any { return w.Start }),
			"end":     attr(func(w entity.Workout) any { return w.End }),
			"reps":    attr(func(w entity.Workout) any { return w.Reps }),
			"gymName": attr(func(w entity.Workout) any { return w.GymName }),
		},
	}
	return r
}

func (r *Runtime) ResolveField(ctx context.Context, objectType, field string, source any, argv map[string]any) (any, error) {
	byField, ok := r.resolvers[objectType]
	if !ok {
		return nil, fmt.Errorf("no resolvers for type %s", objectType)
	}
	resolve, ok := byField[field]
	if !ok {
		return nil, fmt.Errorf("no resolver for %s.%s", objectType, field)
	}
	return resolve(ctx, source, argv)
}

// ResolveType reads the explicit type tag off the value. Dispatch never
// inspects the value's shape; an unknown tag fails the subtree.
func (r *Runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	tagged, ok := value.(interface{ TypeTag() string })
	if !ok {
		return "", errs.New(errs.CodeTypeResolution, "value of type %T carries no type tag for %s", value, abstractType)
	}
	return tagged.TypeTag(), nil
}

func (r *Runtime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	switch typeName {
	case "DateTime":
		switch t := value.(type) {
		case time.Time:
			return t.UTC().Format(time.RFC3339), nil
		case *time.Time:
			return t.UTC().Format(time.RFC3339), nil
		case string:
			return t, nil
		}
		return nil, fmt.Errorf("cannot serialize %T as DateTime", value)
	case "PhotoCategory":
		switch c := value.(type) {
		case entity.PhotoCategory:
			return string(c), nil
		case string:
			return c, nil
		}
		return nil, fmt.Errorf("cannot serialize %T as PhotoCategory", value)
	default:
		return value, nil
	}
}

// ---- query ----

func (r *Runtime) queryTotalUsers(ctx context.Context, _ any, _ map[string]any) (any, error) {
	return r.src.Users.Count(ctx)
}

func (r *Runtime) queryTotalPhotos(ctx context.Context, _ any, _ map[string]any) (any, error) {
	return r.src.Photos.Count(ctx)
}

func (r *Runtime) queryAllUsers(ctx context.Context, _ any, argv map[string]any) (any, error) {
	la, err := args.DecodeListArgs(argv)
	if err != nil {
		return nil, errs.Wrap(errs.CodeValidation, err)
	}
	users, err := r.src.Users.All(ctx)
	if err != nil {
		return nil, err
	}
	return userWindow(users, la)
}

func (r *Runtime) queryAllPhotos(ctx context.Context, _ any, argv map[string]any) (any, error) {
	la, err := args.DecodeListArgs(argv)
	if err != nil {
		return nil, errs.Wrap(errs.CodeValidation, err)
	}
	// The filter pushes down into the source query; sort and page always run
	// here, strictly in that order.
	photos, err := r.src.Photos.Where(ctx, datasource.PhotoQuery{Filter: la.Filter})
	if err != nil {
		return nil, err
	}
	return photoWindow(photos, args.ListArgs{Page: la.Page, Sort: la.Sort})
}

func (r *Runtime) queryUser(ctx context.Context, _ any, argv map[string]any) (any, error) {
	login, err := stringArg(argv, "githubLogin")
	if err != nil {
		return nil, err
	}
	u, err := r.src.Users.GetByLogin(ctx, login)
	if errors.Is(err, datasource.ErrNotFound) {
		// An identity lookup that misses on a nullable field is null, not an
		// error.
		return nil, nil
	}
	return u, err
}

func (r *Runtime) queryPhoto(ctx context.Context, _ any, argv map[string]any) (any, error) {
	id, err := stringArg(argv, "id")
	if err != nil {
		return nil, err
	}
	p, err := r.src.Photos.GetByID(ctx, id)
	if errors.Is(err, datasource.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

func (r *Runtime) queryAgenda(ctx context.Context, _ any, _ map[string]any) (any, error) {
	return r.src.Agenda.All(ctx)
}

// ---- relations ----

func (r *Runtime) userPostedPhotos(ctx context.Context, source any, argv map[string]any) (any, error) {
	u, err := as[*entity.User](source)
	if err != nil {
		return nil, err
	}
	la, err := args.DecodeListArgs(argv)
	if err != nil {
		return nil, errs.Wrap(errs.CodeValidation, err)
	}
	photos, err := r.rel.PostedPhotos(ctx, u.GithubLogin)
	if err != nil {
		return nil, err
	}
	return photoWindow(photos, la)
}

func (r *Runtime) userInPhotos(ctx context.Context, source any, argv map[string]any) (any, error) {
	u, err := as[*entity.User](source)
	if err != nil {
		return nil, err
	}
	la, err := args.DecodeListArgs(argv)
	if err != nil {
		return nil, errs.Wrap(errs.CodeValidation, err)
	}
	photos, err := r.rel.InPhotos(ctx, u.GithubLogin)
	if err != nil {
		return nil, err
	}
	return photoWindow(photos, la)
}

func (r *Runtime) userFriendships(ctx context.Context, source any, _ map[string]any) (any, error) {
	u, err := as[*entity.User](source)
	if err != nil {
		return nil, err
	}
	return r.rel.Friendships(ctx, u.GithubLogin)
}

func (r *Runtime) photoPostedBy(ctx context.Context, source any, _ map[string]any) (any, error) {
	p, err := as[*entity.Photo](source)
	if err != nil {
		return nil, err
	}
	return r.rel.PostedBy(ctx, p)
}

func (r *Runtime) photoTaggedUsers(ctx context.Context, source any, argv map[string]any) (any, error) {
	p, err := as[*entity.Photo](source)
	if err != nil {
		return nil, err
	}
	la, err := args.DecodeListArgs(argv)
	if err != nil {
		return nil, errs.Wrap(errs.CodeValidation, err)
	}
	users, err := r.rel.TaggedUsers(ctx, p)
	if err != nil {
		return nil, err
	}
	return userWindow(users, la)
}

func (r *Runtime) friendshipMembers(ctx context.Context, source any, _ map[string]any) (any, error) {
	f, err := as[*entity.Friendship](source)
	if err != nil {
		return nil, err
	}
	return r.rel.FriendshipMembers(ctx, f)
}

// ---- mutations ----

func (r *Runtime) mutatePostPhoto(ctx context.Context, _ any, argv map[string]any) (any, error) {
	input, ok := argv["input"].(map[string]any)
	if !ok {
		return nil, errs.New(errs.CodeValidation, "postPhoto requires an input object")
	}
	in := mutation.PostPhotoInput{
		Name:        optString(input["name"]),
		URL:         optString(input["url"]),
		Description: optString(input["description"]),
		Category:    entity.PhotoCategory(optString(input["category"])),
		PostedBy:    optString(input["postedBy"]),
	}
	return r.mut.PostPhoto(ctx, in)
}

func (r *Runtime) mutateAddUser(ctx context.Context, _ any, argv map[string]any) (any, error) {
	login, err := stringArg(argv, "githubLogin")
	if err != nil {
		return nil, err
	}
	return r.mut.AddUser(ctx, login, optString(argv["name"]))
}

func (r *Runtime) mutateTagPhoto(ctx context.Context, _ any, argv map[string]any) (any, error) {
	login, err := stringArg(argv, "githubLogin")
	if err != nil {
		return nil, err
	}
	photoID, err := stringArg(argv, "photoID")
	if err != nil {
		return nil, err
	}
	return r.mut.TagPhoto(ctx, login, photoID)
}

func (r *Runtime) mutateAddFriendship(ctx context.Context, _ any, argv map[string]any) (any, error) {
	rawLogins, ok := argv["logins"].([]any)
	if !ok {
		return nil, errs.New(errs.CodeValidation, "addFriendship requires logins")
	}
	logins := make([]string, len(rawLogins))
	for i, raw := range rawLogins {
		logins[i] = optString(raw)
	}
	return r.mut.AddFriendship(ctx, mutation.AddFriendshipInput{
		Logins:     logins,
		HowLong:    optString(argv["howLong"]),
		WhereWeMet: optString(argv["whereWeMet"]),
	})
}

// ---- helpers ----

// photoWindow applies filter, sort and page, strictly in that order.
func photoWindow(photos []*entity.Photo, la args.ListArgs) (any, error) {
	photos = listops.FilterPhotos(la.Filter, photos)
	photos = listops.SortPhotos(la.Sort, photos)
	out, err := listops.PagePhotos(la.Page, photos)
	if err != nil {
		return nil, errs.Wrap(errs.CodeValidation, err)
	}
	return out, nil
}

func userWindow(users []*entity.User, la args.ListArgs) (any, error) {
	users = listops.SortUsers(la.Sort, users)
	out, err := listops.PageUsers(la.Page, users)
	if err != nil {
		return nil, errs.Wrap(errs.CodeValidation, err)
	}
	return out, nil
}

// attr lifts an entity accessor into a resolver.
func attr[T any](get func(T) any) resolverFunc {
	return func(_ context.Context, source any, _ map[string]any) (any, error) {
		v, err := as[T](source)
		if err != nil {
			return nil, err
		}
		return get(v), nil
	}
}

// passthroughPayload returns the subscription event payload, checking it has
// the shape the topic promises.
func passthroughPayload[T any](topic string) resolverFunc {
	return func(_ context.Context, source any, _ map[string]any) (any, error) {
		v, ok := source.(T)
		if !ok {
			return nil, fmt.Errorf("%s event carries %T", topic, source)
		}
		return v, nil
	}
}

func as[T any](source any) (T, error) {
	v, ok := source.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("resolver expected %T source, got %T", zero, source)
	}
	return v, nil
}

// optional maps an empty attribute to null.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func optString(v any) string {
	s, _ := v.(string)
	return s
}

func stringArg(argv map[string]any, name string) (string, error) {
	s, ok := argv[name].(string)
	if !ok || s == "" {
		return "", errs.New(errs.CodeValidation, "argument %q is required", name)
	}
	return s, nil
}
