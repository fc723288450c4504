package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"formpulse/internal/repository/models"
	"formpulse/internal/util"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var userColumns = []string{"ID", "TENANT_ID", "GOOGLE_ID", "EMAIL", "NAME", "PROFILE_PICTURE_URL", "ENCRYPTED_ACCESS_TOKEN", "ENCRYPTED_REFRESH_TOKEN", "TOKEN_EXPIRES_AT", "CREATED_AT", "UPDATED_AT", "DELETED_AT"}

func TestSQLXUserRepository_GetUserByID(t *testing.T) {
	queryPattern := `SELECT \* FROM users WHERE id = .+ AND deleted_at IS NULL`
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		db, mock := setupTestDB(t)
		defer db.Close()
		repo := NewSQLXUserRepository(db)

		rows := sqlmock.NewRows(userColumns).
			AddRow("u1", "t1", "google-123", "guru@example.com", "Bu Guru", nil, nil, nil, nil, now, now, nil)
		mock.ExpectPrepare(queryPattern).
			ExpectQuery().
			WithArgs("u1").
			WillReturnRows(rows)

		user, err := repo.GetUserByID(context.Background(), "u1")

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "t1", user.TenantID)
		assert.Equal(t, "Bu Guru", user.Name.String)
		assert.False(t, user.ProfilePictureURL.Valid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound returns nil without error", func(t *testing.T) {
		db, mock := setupTestDB(t)
		defer db.Close()
		repo := NewSQLXUserRepository(db)

		mock.ExpectPrepare(queryPattern).
			ExpectQuery().
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetUserByID(context.Background(), "missing")

		assert.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestSQLXUserRepository_GetUserByGoogleID(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(userColumns).
		AddRow("u1", "t1", "google-123", "guru@example.com", nil, nil, nil, nil, nil, now, now, nil)
	mock.ExpectPrepare(`SELECT \* FROM users WHERE google_id = .+ AND deleted_at IS NULL`).
		ExpectQuery().
		WithArgs("google-123").
		WillReturnRows(rows)

	user, err := repo.GetUserByGoogleID(context.Background(), "google-123")

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_CreateUser(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)

	user := &models.User{
		ID:       "u1",
		TenantID: "t1",
		GoogleID: "google-123",
		Email:    "guru@example.com",
		Name:     util.StringToNullString("Bu Guru"),
	}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("u1", "t1", "google-123", "guru@example.com", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateUser(context.Background(), user)

	assert.NoError(t, err)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_UpdateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := setupTestDB(t)
		defer db.Close()
		repo := NewSQLXUserRepository(db)

		user := &models.User{ID: "u1", TenantID: "t1", Email: "guru@example.com"}
		mock.ExpectExec(`UPDATE users SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateUser(context.Background(), user))
		assert.False(t, user.UpdatedAt.IsZero())
	})

	t.Run("no rows affected is an error", func(t *testing.T) {
		db, mock := setupTestDB(t)
		defer db.Close()
		repo := NewSQLXUserRepository(db)

		mock.ExpectExec(`UPDATE users SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateUser(context.Background(), &models.User{ID: "gone"})
		assert.Error(t, err)
	})

	t.Run("ExecError", func(t *testing.T) {
		db, mock := setupTestDB(t)
		defer db.Close()
		repo := NewSQLXUserRepository(db)

		mock.ExpectExec(`UPDATE users SET`).
			WillReturnError(errors.New("ORA-12541: no listener"))

		err := repo.UpdateUser(context.Background(), &models.User{ID: "u1"})
		assert.Error(t, err)
	})
}
