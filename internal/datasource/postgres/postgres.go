// Package postgres implements the data source contracts on PostgreSQL via
// pgx. The tagging and friendship-membership associations live in join
// tables; reads denormalize tags with array_agg so the engine sees the same
// Photo shape the in-memory store produces.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hanpama/snapgraph/internal/datasource"
	"github.com/hanpama/snapgraph/internal/entity"
)

// Store exposes pgx-backed sources over one connection pool.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Sources exposes the pool as the engine's per-entity contracts. Agenda
// items are not persisted; callers compose an in-memory agenda source.
func (s *Store) Sources() datasource.Store {
	return datasource.Store{
		Users:       &userSource{db: s.db},
		Photos:      &photoSource{db: s.db},
		Friendships: &friendshipSource{db: s.db},
	}
}

// ---- users ----

type userSource struct {
	db *pgxpool.Pool
}

func (r *userSource) GetByLogin(ctx context.Context, login string) (*entity.User, error) {
	query := `
		SELECT github_login, COALESCE(name, ''), COALESCE(avatar, '')
		FROM users
		WHERE github_login = $1
	`
	var u entity.User
	err := r.db.QueryRow(ctx, query, login).Scan(&u.GithubLogin, &u.Name, &u.Avatar)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, datasource.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *userSource) All(ctx context.Context) ([]*entity.User, error) {
	query := `
		SELECT github_login, COALESCE(name, ''), COALESCE(avatar, '')
		FROM users
		ORDER BY github_login
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*entity.User, 0)
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.GithubLogin, &u.Name, &u.Avatar); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

func (r *userSource) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *userSource) Put(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (github_login, name, avatar)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
		ON CONFLICT (github_login)
		DO UPDATE SET name = EXCLUDED.name, avatar = EXCLUDED.avatar
	`
	if _, err := r.db.Exec(ctx, query, u.GithubLogin, u.Name, u.Avatar); err != nil {
		return fmt.Errorf("failed to put user: %w", err)
	}
	return nil
}

// ---- photos ----

type photoSource struct {
	db *pgxpool.Pool
}

const photoColumns = `
	p.id, p.name, p.url, COALESCE(p.description, ''), p.category, p.created, p.posted_by,
	COALESCE(array_agg(t.github_login ORDER BY t.tagged_at) FILTER (WHERE t.github_login IS NOT NULL), '{}')
`

const photoFrom = `
	FROM photos p
	LEFT JOIN photo_tags t ON t.photo_id = p.id
`

func (r *photoSource) GetByID(ctx context.Context, id string) (*entity.Photo, error) {
	query := `SELECT ` + photoColumns + photoFrom + `WHERE p.id = $1 GROUP BY p.id`
	p, err := scanPhoto(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, datasource.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return p, nil
}

func (r *photoSource) All(ctx context.Context) ([]*entity.Photo, error) {
	return r.Where(ctx, datasource.PhotoQuery{})
}

// Where translates the describable query into a WHERE clause. The tagged-user
// and search predicates mirror the list engine semantics: set membership and
// case-insensitive substring over name+description.
func (r *photoSource) Where(ctx context.Context, q datasource.PhotoQuery) ([]*entity.Photo, error) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.PostedBy != "" {
		conds = append(conds, "p.posted_by = "+arg(q.PostedBy))
	}
	if f := q.Filter; f != nil {
		if f.Category != nil {
			conds = append(conds, "p.category = "+arg(string(*f.Category)))
		}
		if f.CreatedBetween != nil {
			conds = append(conds, "p.created >= "+arg(f.CreatedBetween.Start))
			conds = append(conds, "p.created <= "+arg(f.CreatedBetween.End))
		}
		if len(f.TaggedUsers) > 0 {
			conds = append(conds, `EXISTS (
				SELECT 1 FROM photo_tags ft
				WHERE ft.photo_id = p.id AND ft.github_login = ANY(`+arg(f.TaggedUsers)+`)
			)`)
		}
		if f.SearchText != nil {
			pattern := "%" + escapeLike(*f.SearchText) + "%"
			conds = append(conds, "(p.name ILIKE "+arg(pattern)+" OR COALESCE(p.description, '') ILIKE "+arg(pattern)+")")
		}
	}

	query := `SELECT ` + photoColumns + photoFrom
	if len(conds) > 0 {
		query += "WHERE " + strings.Join(conds, " AND ") + "\n"
	}
	query += "GROUP BY p.id ORDER BY p.created, p.id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	defer rows.Close()

	photos := make([]*entity.Photo, 0)
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}
	return photos, nil
}

func (r *photoSource) ByPoster(ctx context.Context, login string) ([]*entity.Photo, error) {
	return r.Where(ctx, datasource.PhotoQuery{PostedBy: login})
}

func (r *photoSource) TaggedWith(ctx context.Context, login string) ([]*entity.Photo, error) {
	return r.Where(ctx, datasource.PhotoQuery{Filter: &entity.PhotoFilter{TaggedUsers: []string{login}}})
}

func (r *photoSource) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM photos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return n, nil
}

func (r *photoSource) Put(ctx context.Context, p *entity.Photo) error {
	query := `
		INSERT INTO photos (id, name, url, description, category, created, posted_by)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET name = EXCLUDED.name, url = EXCLUDED.url,
			description = EXCLUDED.description, category = EXCLUDED.category
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.URL, p.Description, string(p.Category), p.Created, p.PostedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to put photo: %w", err)
	}
	return nil
}

func (r *photoSource) Tag(ctx context.Context, photoID, login string) error {
	query := `
		INSERT INTO photo_tags (photo_id, github_login, tagged_at)
		VALUES ($1, $2, now())
		ON CONFLICT (photo_id, github_login) DO NOTHING
	`
	result, err := r.db.Exec(ctx, query, photoID, login)
	if err != nil {
		// FK violations mean a missing endpoint.
		return fmt.Errorf("failed to tag photo: %w", err)
	}
	_ = result
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row rowScanner) (*entity.Photo, error) {
	var p entity.Photo
	var category string
	err := row.Scan(&p.ID, &p.Name, &p.URL, &p.Description, &category, &p.Created, &p.PostedBy, &p.TaggedLogins)
	if err != nil {
		return nil, err
	}
	p.Category = entity.PhotoCategory(category)
	return &p, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

// ---- friendships ----

type friendshipSource struct {
	db *pgxpool.Pool
}

const friendshipColumns = `
	f.id, COALESCE(f.how_long, ''), COALESCE(f.where_we_met, ''),
	COALESCE(array_agg(m.github_login ORDER BY m.position) FILTER (WHERE m.github_login IS NOT NULL), '{}')
`

const friendshipFrom = `
	FROM friendships f
	LEFT JOIN friendship_members m ON m.friendship_id = f.id
`

func (r *friendshipSource) GetByID(ctx context.Context, id string) (*entity.Friendship, error) {
	query := `SELECT ` + friendshipColumns + friendshipFrom + `WHERE f.id = $1 GROUP BY f.id`
	f, err := scanFriendship(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, datasource.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}
	return f, nil
}

func (r *friendshipSource) All(ctx context.Context) ([]*entity.Friendship, error) {
	query := `SELECT ` + friendshipColumns + friendshipFrom + `GROUP BY f.id ORDER BY f.id`
	return r.queryMany(ctx, query)
}

func (r *friendshipSource) ByMember(ctx context.Context, login string) ([]*entity.Friendship, error) {
	query := `SELECT ` + friendshipColumns + friendshipFrom + `
		WHERE EXISTS (
			SELECT 1 FROM friendship_members fm
			WHERE fm.friendship_id = f.id AND fm.github_login = $1
		)
		GROUP BY f.id ORDER BY f.id`
	return r.queryMany(ctx, query, login)
}

func (r *friendshipSource) queryMany(ctx context.Context, query string, args ...any) ([]*entity.Friendship, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query friendships: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.Friendship, 0)
	for rows.Next() {
		f, err := scanFriendship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friendship: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friendships: %w", err)
	}
	return out, nil
}

func (r *friendshipSource) Put(ctx context.Context, f *entity.Friendship) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin friendship put: %w", err)
	}
	defer tx.Rollback(ctx)

	upsert := `
		INSERT INTO friendships (id, how_long, where_we_met)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
		ON CONFLICT (id)
		DO UPDATE SET how_long = EXCLUDED.how_long, where_we_met = EXCLUDED.where_we_met
	`
	if _, err := tx.Exec(ctx, upsert, f.ID, f.HowLong, f.WhereWeMet); err != nil {
		return fmt.Errorf("failed to put friendship: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM friendship_members WHERE friendship_id = $1`, f.ID); err != nil {
		return fmt.Errorf("failed to clear friendship members: %w", err)
	}
	for i, login := range f.Logins {
		insert := `INSERT INTO friendship_members (friendship_id, github_login, position) VALUES ($1, $2, $3)`
		if _, err := tx.Exec(ctx, insert, f.ID, login, i); err != nil {
			return fmt.Errorf("failed to add friendship member: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit friendship put: %w", err)
	}
	return nil
}

func scanFriendship(row rowScanner) (*entity.Friendship, error) {
	var f entity.Friendship
	if err := row.Scan(&f.ID, &f.HowLong, &f.WhereWeMet, &f.Logins); err != nil {
		return nil, err
	}
	return &f, nil
}
