package storage

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"

	"JobFeed/internal/domain"
	"JobFeed/internal/ports"
)

// UserRepository persists notification recipients.
type UserRepository struct {
	db   *DB
	opts options
}

var _ ports.UserRepository = (*UserRepository)(nil)

// NewUserRepository wires the repository over the shared handle.
func NewUserRepository(db *DB, opts ...Option) *UserRepository {
	return &UserRepository{db: db, opts: buildOptions(opts)}
}

// Upsert creates the user or refreshes its profile fields. created_at is kept.
func (r *UserRepository) Upsert(ctx context.Context, user domain.User) error {
	now := toMillis(r.opts.now())

	_, err := r.db.Builder.Insert("users").
		Columns("id", "username", "first_name", "last_name", "created_at_ms", "updated_at_ms").
		Values(user.ID, user.Username, user.FirstName, user.LastName, now, now).
		Suffix(`ON CONFLICT (id) DO UPDATE
              SET username = excluded.username,
                  first_name = excluded.first_name,
                  last_name = excluded.last_name,
                  updated_at_ms = excluded.updated_at_ms`).
		RunWith(r.db.SQL).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrapf(err, "upsert user %d", user.ID)
	}
	return nil
}

// List returns all users ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	query, args, err := r.db.Builder.Select(userColumns...).
		From("users").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build users query")
	}

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query users")
	}

	var out []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		out = append(out, user)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, errors.Wrap(rowsErr, "rows iteration")
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, errors.Wrap(closeErr, "close rows")
	}

	return out, nil
}

// Get loads one user or returns ErrNotFound.
func (r *UserRepository) Get(ctx context.Context, id int64) (domain.User, error) {
	query, args, err := r.db.Builder.Select(userColumns...).
		From("users").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return domain.User{}, errors.Wrap(err, "build user query")
	}

	user, err := scanUser(r.db.SQL.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, errors.Wrapf(ErrNotFound, "user %d", id)
	}
	return user, err
}

var userColumns = []string{"id", "username", "first_name", "last_name", "created_at_ms", "updated_at_ms"}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		user               domain.User
		createdAt, updated int64
	)
	if err := row.Scan(&user.ID, &user.Username, &user.FirstName, &user.LastName, &createdAt, &updated); err != nil {
		return domain.User{}, errors.Wrap(err, "scan user")
	}
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updated)
	return user, nil
}
