package database

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/xavierca1/autovault-agents/internal/entity"
)

type VehicleRepository struct {
	DB *sql.DB
}

func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{DB: db}
}

func (r *VehicleRepository) CountWishlist(ctx context.Context, vehicleID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM wishlists WHERE vehicle_id = $1`, vehicleID).Scan(&n)
	return n, err
}

func (r *VehicleRepository) PromoteToTrending(ctx context.Context, vehicleID string) (bool, error) {
	query := `
		UPDATE vehicles
		SET badge = $2, updated_at = NOW()
		WHERE id = $1 AND (badge IS NULL OR badge <> ALL($3))
	`
	res, err := r.DB.ExecContext(ctx, query, vehicleID, entity.BadgeTrending, pq.Array(entity.ProtectedBadges))
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
