package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-service/internal/domain"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case **string:
			*d = v.(*string)
		case *bool:
			*d = v.(bool)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}

type fakeQuerier struct {
	row     fakeRow
	tag     pgconn.CommandTag
	execErr error

	lastSQL  string
	lastArgs []any
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.lastSQL, q.lastArgs = sql, args
	return q.row
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.lastSQL, q.lastArgs = sql, args
	return q.tag, q.execErr
}

func TestUserRepository_Create(t *testing.T) {
	now := time.Now().UTC()
	q := &fakeQuerier{row: fakeRow{values: []any{"id-1", now, now}}}
	repo := NewUserRepository(q)

	user := &domain.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))

	assert.Equal(t, "id-1", user.ID)
	assert.Equal(t, now, user.CreatedAt)
	assert.Contains(t, q.lastSQL, "INSERT INTO users")
	assert.Equal(t, []any{"Alice", "alice@example.com", "hash"}, q.lastArgs)
}

func TestUserRepository_CreateMapsUniqueViolation(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: &pgconn.PgError{Code: "23505"}}}
	err := NewUserRepository(q).Create(context.Background(), &domain.User{Email: "a@x.com"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	now := time.Now().UTC()
	avatar := "upload/a.png"
	q := &fakeQuerier{row: fakeRow{values: []any{"id-1", "Alice", "alice@example.com", "hash", &avatar, now, now}}}

	user, err := NewUserRepository(q).GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "id-1", user.ID)
	require.NotNil(t, user.AvatarPath)
	assert.Equal(t, avatar, *user.AvatarPath)
	assert.Equal(t, []any{"alice@example.com"}, q.lastArgs)
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}
	_, err := NewUserRepository(q).GetByEmail(context.Background(), "missing@example.com")
	require.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestUserRepository_Exists(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{values: []any{true}}}
	exists, err := NewUserRepository(q).Exists(context.Background(), "id-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Contains(t, q.lastSQL, "SELECT EXISTS")
}

func TestUserRepository_UpdateAvatar(t *testing.T) {
	q := &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 1")}
	repo := NewUserRepository(q)
	require.NoError(t, repo.UpdateAvatar(context.Background(), "id-1", "upload/a.png"))
	assert.Equal(t, []any{"upload/a.png", "id-1"}, q.lastArgs)

	q.tag = pgconn.NewCommandTag("UPDATE 0")
	require.ErrorIs(t, repo.UpdateAvatar(context.Background(), "id-1", "upload/a.png"), pgx.ErrNoRows)
}
