package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newRoomRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRoomRepositoryListAvailable(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "building_id", "number", "capacity", "created_at"}).
		AddRow("room-1", "bld-1", "101", 60, time.Now()).
		AddRow("room-2", "bld-1", "102", 40, time.Now())
	mock.ExpectQuery("SELECT .+ FROM rooms r WHERE NOT EXISTS").
		WithArgs("slot-1", date).
		WillReturnRows(rows)

	rooms, err := repo.ListAvailable(context.Background(), "slot-1", date, "")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	require.Equal(t, "101", rooms[0].Number)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryListAvailableFiltersBuilding(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM rooms r WHERE NOT EXISTS .+ AND r\.building_id`).
		WithArgs("slot-1", date, "bld-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "building_id", "number", "capacity", "created_at"}))

	rooms, err := repo.ListAvailable(context.Background(), "slot-1", date, "bld-2")
	require.NoError(t, err)
	require.Empty(t, rooms)
	require.NoError(t, mock.ExpectationsWereMet())
}
