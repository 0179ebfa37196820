package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/xavierca1/autovault-agents/internal/entity"
)

type DealerRepository struct {
	DB *sql.DB
}

func NewDealerRepository(db *sql.DB) *DealerRepository {
	return &DealerRepository{DB: db}
}

func (r *DealerRepository) FindByID(ctx context.Context, id string) (*entity.DealerProfile, error) {
	query := `
		SELECT d.id, COALESCE(d.user_id, ''), d.business_name, COALESCE(u.email, ''), COALESCE(d.phone, '')
		FROM dealer_profiles d
		LEFT JOIN users u ON u.id = d.user_id
		WHERE d.id = $1
	`
	var d entity.DealerProfile
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.UserID, &d.BusinessName, &d.Email, &d.Phone)
	if err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

// FindPreference decodes the automation JSONB column. A NULL column means
// every automation is off.
func (r *DealerRepository) FindPreference(ctx context.Context, dealerProfileID string) (*entity.DealerPreference, error) {
	query := `SELECT dealer_profile_id, automation FROM dealer_preferences WHERE dealer_profile_id = $1`

	var (
		pref entity.DealerPreference
		raw  []byte
	)
	if err := r.DB.QueryRowContext(ctx, query, dealerProfileID).Scan(&pref.DealerProfileID, &raw); err != nil {
		return nil, mapError(err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &pref.Automation); err != nil {
			return nil, fmt.Errorf("decode automation for dealer %s: %w", dealerProfileID, err)
		}
	}
	return &pref, nil
}

func (r *DealerRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM dealer_profiles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
