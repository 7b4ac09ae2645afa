package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/teebox-golf/teebox-api/internal/models"
)

// EquipmentRepository reads equipment engagement owned by the bag service.
type EquipmentRepository struct {
	db *sqlx.DB
}

// NewEquipmentRepository constructs the repository.
func NewEquipmentRepository(db *sqlx.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

// EngagementByUserID aggregates a user's equipment items into the scoring
// signal: item count, whether any item carries a photo, distinct brand count.
func (r *EquipmentRepository) EngagementByUserID(ctx context.Context, userID string) (*models.EquipmentSignal, error) {
	const query = `SELECT COUNT(*) AS item_count,
COALESCE(BOOL_OR(photo_url IS NOT NULL AND photo_url <> ''), FALSE) AS has_photo,
COUNT(DISTINCT brand) AS unique_brands
FROM equipment_items WHERE user_id = $1`
	var row struct {
		ItemCount    int  `db:"item_count"`
		HasPhoto     bool `db:"has_photo"`
		UniqueBrands int  `db:"unique_brands"`
	}
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		return nil, fmt.Errorf("equipment engagement: %w", err)
	}
	return &models.EquipmentSignal{
		ItemCount:    row.ItemCount,
		HasPhoto:     row.HasPhoto,
		UniqueBrands: row.UniqueBrands,
	}, nil
}
