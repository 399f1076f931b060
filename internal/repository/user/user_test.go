package user

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront/internal/domain"
	"storefront/internal/testutil/pgtest"
)

func TestPostgres_CreateAndGetByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(pgtest.New(t), zerolog.Nop())

	created, err := repo.Create(ctx, domain.User{Email: "Ana@Example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "ana@example.com", created.Email)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
}

func TestPostgres_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(pgtest.New(t), zerolog.Nop())

	_, err := repo.Create(ctx, domain.User{Email: "dup@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.User{Email: "DUP@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestPostgres_GetByEmailNotFound(t *testing.T) {
	repo := NewPostgres(pgtest.New(t), zerolog.Nop())

	_, err := repo.GetByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
