package repository_test

import (
	"context"
	"testing"

	"github.com/Baaaki/car-marketplace/internal/apperror"
	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/Baaaki/car-marketplace/internal/repository"
	"github.com/Baaaki/car-marketplace/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_UniqueEmailIsDuplicateStorageError(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)
	repo := repository.NewUserRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Role: models.RoleUser}))

	err := repo.CreateUser(ctx, &models.User{Username: "alice2", Email: "alice@example.com", PasswordHash: "x", Role: models.RoleUser})
	assert.ErrorIs(t, err, &apperror.Error{Kind: apperror.KindStorage, Storage: apperror.StorageDuplicate})
}

func TestUserRepository_Lookups(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)
	repo := repository.NewUserRepository(testDB.DB)
	ctx := context.Background()

	alice := testutil.CreateTestUser(t, testDB.DB, "alice", "alice@example.com", "secret1", models.RoleUser)

	byEmail, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	byName, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	byID, err := repo.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	missing, err := repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	all, err := repo.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
