// Package memory implements the data source contracts with process-local
// maps and explicit association indexes. Tagging and friendship membership
// are stored as identity-keyed indexes and resolved by lookup, never by
// walking the graph.
package memory

import (
	"context"
	"sync"

	"github.com/hanpama/snapgraph/internal/datasource"
	"github.com/hanpama/snapgraph/internal/entity"
	"github.com/hanpama/snapgraph/internal/listops"
)

// Store holds every entity kind behind one lock. Reads copy entities out so
// callers never alias the stored values.
type Store struct {
	mu          sync.RWMutex
	users       map[string]*entity.User
	userOrder   []string
	photos      map[string]*entity.Photo
	photoOrder  []string
	friendships map[string]*entity.Friendship
	friendOrder []string
	agenda      []entity.AgendaItem

	// tagging association index, both directions, insertion-ordered
	tagsByPhoto map[string][]string
	tagsByUser  map[string][]string

	// friendship membership index: login -> friendship ids
	friendsByMember map[string][]string
}

func NewStore() *Store {
	return &Store{
		users:           make(map[string]*entity.User),
		photos:          make(map[string]*entity.Photo),
		friendships:     make(map[string]*entity.Friendship),
		tagsByPhoto:     make(map[string][]string),
		tagsByUser:      make(map[string][]string),
		friendsByMember: make(map[string][]string),
	}
}

// Sources exposes the store as the engine's per-entity contracts.
func (s *Store) Sources() datasource.Store {
	return datasource.Store{
		Users:       (*userSource)(s),
		Photos:      (*photoSource)(s),
		Friendships: (*friendshipSource)(s),
		Agenda:      (*agendaSource)(s),
	}
}

// SetAgenda replaces the agenda family wholesale.
func (s *Store) SetAgenda(items []entity.AgendaItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agenda = append([]entity.AgendaItem(nil), items...)
}

// ---- users ----

type userSource Store

func (s *userSource) GetByLogin(ctx context.Context, login string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[login]
	if !ok {
		return nil, datasource.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *userSource) All(ctx context.Context) ([]*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.User, 0, len(s.userOrder))
	for _, login := range s.userOrder {
		cp := *s.users[login]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *userSource) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *userSource) Put(ctx context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	if _, ok := s.users[u.GithubLogin]; !ok {
		s.userOrder = append(s.userOrder, u.GithubLogin)
	}
	s.users[u.GithubLogin] = &cp
	return nil
}

// ---- photos ----

type photoSource Store

func (s *photoSource) GetByID(ctx context.Context, id string) (*entity.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.photos[id]
	if !ok {
		return nil, datasource.ErrNotFound
	}
	return s.copyPhoto(p), nil
}

func (s *photoSource) All(ctx context.Context) ([]*entity.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Photo, 0, len(s.photoOrder))
	for _, id := range s.photoOrder {
		out = append(out, s.copyPhoto(s.photos[id]))
	}
	return out, nil
}

func (s *photoSource) Where(ctx context.Context, q datasource.PhotoQuery) ([]*entity.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Photo, 0)
	for _, id := range s.photoOrder {
		p := s.copyPhoto(s.photos[id])
		if q.PostedBy != "" && p.PostedBy != q.PostedBy {
			continue
		}
		if !listops.MatchPhoto(q.Filter, p) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *photoSource) ByPoster(ctx context.Context, login string) ([]*entity.Photo, error) {
	return s.Where(ctx, datasource.PhotoQuery{PostedBy: login})
}

func (s *photoSource) TaggedWith(ctx context.Context, login string) ([]*entity.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Photo, 0)
	for _, id := range s.tagsByUser[login] {
		if p, ok := s.photos[id]; ok {
			out = append(out, s.copyPhoto(p))
		}
	}
	return out, nil
}

func (s *photoSource) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos), nil
}

func (s *photoSource) Put(ctx context.Context, p *entity.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	cp.TaggedLogins = nil // association index owns tags
	if _, ok := s.photos[p.ID]; !ok {
		s.photoOrder = append(s.photoOrder, p.ID)
	}
	s.photos[p.ID] = &cp
	return nil
}

func (s *photoSource) Tag(ctx context.Context, photoID, login string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.photos[photoID]; !ok {
		return datasource.ErrNotFound
	}
	if _, ok := s.users[login]; !ok {
		return datasource.ErrNotFound
	}
	for _, tagged := range s.tagsByPhoto[photoID] {
		if tagged == login {
			return nil // already associated
		}
	}
	s.tagsByPhoto[photoID] = append(s.tagsByPhoto[photoID], login)
	s.tagsByUser[login] = append(s.tagsByUser[login], photoID)
	return nil
}

// copyPhoto copies the stored photo and denormalizes its tags. Callers must
// hold at least the read lock.
func (s *photoSource) copyPhoto(p *entity.Photo) *entity.Photo {
	cp := *p
	cp.TaggedLogins = append([]string(nil), s.tagsByPhoto[p.ID]...)
	return &cp
}

// ---- friendships ----

type friendshipSource Store

func (s *friendshipSource) GetByID(ctx context.Context, id string) (*entity.Friendship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.friendships[id]
	if !ok {
		return nil, datasource.ErrNotFound
	}
	return copyFriendship(f), nil
}

func (s *friendshipSource) All(ctx context.Context) ([]*entity.Friendship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Friendship, 0, len(s.friendOrder))
	for _, id := range s.friendOrder {
		out = append(out, copyFriendship(s.friendships[id]))
	}
	return out, nil
}

func (s *friendshipSource) ByMember(ctx context.Context, login string) ([]*entity.Friendship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Friendship, 0)
	for _, id := range s.friendsByMember[login] {
		if f, ok := s.friendships[id]; ok {
			out = append(out, copyFriendship(f))
		}
	}
	return out, nil
}

func (s *friendshipSource) Put(ctx context.Context, f *entity.Friendship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.friendships[f.ID]; ok {
		for _, login := range old.Logins {
			s.friendsByMember[login] = removeID(s.friendsByMember[login], f.ID)
		}
	} else {
		s.friendOrder = append(s.friendOrder, f.ID)
	}
	s.friendships[f.ID] = copyFriendship(f)
	for _, login := range f.Logins {
		s.friendsByMember[login] = append(s.friendsByMember[login], f.ID)
	}
	return nil
}

func copyFriendship(f *entity.Friendship) *entity.Friendship {
	cp := *f
	cp.Logins = append([]string(nil), f.Logins...)
	return &cp
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// ---- agenda ----

type agendaSource Store

func (s *agendaSource) All(ctx context.Context) ([]entity.AgendaItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.AgendaItem(nil), s.agenda...), nil
}
