package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campushq/campus-api/internal/models"
)

func newUserRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestUserRepositoryFindByEmailAndRole(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "institution_id", "email", "password_hash", "full_name", "role", "active", "last_login", "created_at", "updated_at"}).
		AddRow("user-1", "inst-1", "amira@campus.test", "$2a$10$hash", "Amira Khan", models.RoleFaculty, true, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, institution_id, email, password_hash, full_name, role, active, last_login, created_at, updated_at FROM users WHERE institution_id = $1 AND email = $2 AND role = $3 LIMIT 1")).
		WithArgs("inst-1", "amira@campus.test", models.RoleFaculty).
		WillReturnRows(rows)

	user, err := repo.FindByEmailAndRole(context.Background(), "inst-1", "amira@campus.test", models.RoleFaculty)
	require.NoError(t, err)
	require.Equal(t, "user-1", user.ID)
	require.Equal(t, models.RoleFaculty, user.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByEmailAndRoleNotFound(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT .+ FROM users WHERE institution_id").
		WithArgs("inst-1", "ghost@campus.test", models.RoleStudent).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmailAndRole(context.Background(), "inst-1", "ghost@campus.test", models.RoleStudent)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
