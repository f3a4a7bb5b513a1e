package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campushq/campus-api/internal/models"
)

// RoomRepository persists buildings and rooms, and answers the room
// availability predicate.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

const roomColumns = `id, building_id, number, capacity, created_at`

// ListAvailable returns rooms with no active class at the given slot+date,
// optionally filtered by building. A room is available when no active class
// shares its (date, slot).
func (r *RoomRepository) ListAvailable(ctx context.Context, slotID string, date time.Time, buildingID string) ([]models.Room, error) {
	query := fmt.Sprintf(`SELECT %s FROM rooms r WHERE NOT EXISTS (
		SELECT 1 FROM classes c WHERE c.room_id = r.id AND c.slot_id = $1 AND c.date_of_class = $2 AND c.is_active
	)`, qualify(roomColumns, "r"))
	args := []interface{}{slotID, date}

	if buildingID != "" {
		query += fmt.Sprintf(" AND r.building_id = $%d", len(args)+1)
		args = append(args, buildingID)
	}
	query += " ORDER BY r.number ASC"

	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, fmt.Errorf("list available rooms: %w", err)
	}
	return rooms, nil
}

// FindByID loads a room by id.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	query := fmt.Sprintf(`SELECT %s FROM rooms WHERE id = $1`, roomColumns)
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListByBuilding returns rooms for one building.
func (r *RoomRepository) ListByBuilding(ctx context.Context, buildingID string) ([]models.Room, error) {
	query := fmt.Sprintf(`SELECT %s FROM rooms WHERE building_id = $1 ORDER BY number ASC`, roomColumns)
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, buildingID); err != nil {
		return nil, fmt.Errorf("list rooms by building: %w", err)
	}
	return rooms, nil
}

// FindBuilding loads a building by id.
func (r *RoomRepository) FindBuilding(ctx context.Context, id string) (*models.Building, error) {
	const query = `SELECT id, name, floors, latitude, longitude FROM buildings WHERE id = $1`
	var building models.Building
	if err := r.db.GetContext(ctx, &building, query, id); err != nil {
		return nil, err
	}
	return &building, nil
}
