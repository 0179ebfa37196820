package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xavierca1/autovault-agents/internal/entity"
)

const recentMessages = 10

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) FindWithContext(ctx context.Context, id string) (*entity.Lead, error) {
	query := `
		SELECT l.id, l.dealer_profile_id, COALESCE(l.vehicle_id, ''), l.buyer_name,
		       COALESCE(l.message, ''), l.source, l.status, l.sentiment_label, l.sentiment,
		       l.created_at, l.updated_at, v.id, v.name, v.price
		FROM leads l
		LEFT JOIN vehicles v ON v.id = l.vehicle_id
		WHERE l.id = $1
	`

	var (
		lead         entity.Lead
		vehicleID    sql.NullString
		vehicleName  sql.NullString
		vehiclePrice sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&lead.ID,
		&lead.DealerProfileID,
		&lead.VehicleID,
		&lead.BuyerName,
		&lead.Message,
		&lead.Source,
		&lead.Status,
		&lead.SentimentLabel,
		&lead.Sentiment,
		&lead.CreatedAt,
		&lead.UpdatedAt,
		&vehicleID,
		&vehicleName,
		&vehiclePrice,
	)
	if err != nil {
		return nil, mapError(err)
	}
	if vehicleID.Valid {
		lead.Vehicle = &entity.VehicleSummary{ID: vehicleID.String, Name: vehicleName.String, Price: vehiclePrice.Int64}
	}

	lead.Messages, err = r.recentMessages(ctx, lead.ID)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) recentMessages(ctx context.Context, leadID string) ([]entity.LeadMessage, error) {
	query := `
		SELECT id, lead_id, role, text, type, created_at
		FROM lead_messages
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, leadID, recentMessages)
	if err != nil {
		return nil, fmt.Errorf("query lead messages: %w", err)
	}
	defer rows.Close()

	var msgs []entity.LeadMessage
	for rows.Next() {
		var m entity.LeadMessage
		if err := rows.Scan(&m.ID, &m.LeadID, &m.Role, &m.Text, &m.Type, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lead message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *LeadRepository) UpdateSentiment(ctx context.Context, id string, label entity.SentimentLabel, confidence int) (bool, error) {
	// Only the unanalyzed default (COOL, 0) may be overwritten.
	query := `
		UPDATE leads
		SET sentiment_label = $2, sentiment = $3, updated_at = NOW()
		WHERE id = $1 AND sentiment_label = 'COOL' AND sentiment = 0
	`
	res, err := r.DB.ExecContext(ctx, query, id, string(label), confidence)
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *LeadRepository) CountMessages(ctx context.Context, leadID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM lead_messages WHERE lead_id = $1`, leadID).Scan(&n)
	return n, err
}

func (r *LeadRepository) CreateMessage(ctx context.Context, msg *entity.LeadMessage) error {
	query := `
		INSERT INTO lead_messages (id, lead_id, role, text, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query, msg.ID, msg.LeadID, string(msg.Role), msg.Text, msg.Type, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert lead message: %w", mapError(err))
	}
	return nil
}

func (r *LeadRepository) CountUnresponsive(ctx context.Context, dealerProfileID string, createdBefore time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM leads l
		WHERE l.dealer_profile_id = $1
		  AND l.status = 'NEW'
		  AND l.created_at < $2
		  AND NOT EXISTS (SELECT 1 FROM lead_messages m WHERE m.lead_id = l.id)
	`
	var n int
	err := r.DB.QueryRowContext(ctx, query, dealerProfileID, createdBefore).Scan(&n)
	return n, err
}
