package bolt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
)

func TestUserRepositoryCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))

	user := &domain.User{Name: "Ada", Email: "Ada@Example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, domain.UserStatusActive, user.Status)

	byEmail, err := repo.GetByEmail(ctx, " ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestUserRepositoryEmailIsUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))

	require.NoError(t, repo.Create(ctx, &domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "h"}))
	err := repo.Create(ctx, &domain.User{Name: "Other", Email: "ADA@example.com", PasswordHash: "h"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
}

func TestUserRepositoryUpdateKeepsHash(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))

	user := &domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.Update(ctx, &domain.User{ID: user.ID, Name: "Ada L."}))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.Name)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, domain.UserStatusActive, got.Status)
}
