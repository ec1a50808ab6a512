package store

import (
	"context"
	"database/sql"
	"fmt"
)

const selectRenewalCyclesQuery = `SELECT promotion_key, cycles_consumed FROM promotion_usage WHERE application_id = $1`

// PromotionUsageRepository reads how many renewal cycles each promotion has
// already been applied to for an application.
type PromotionUsageRepository struct {
	db *sql.DB
}

func NewPromotionUsageRepository(db *sql.DB) *PromotionUsageRepository {
	return &PromotionUsageRepository{db: db}
}

// CyclesConsumed returns consumed renewal cycles keyed by promotion key.
// Promotions never applied are absent.
func (r *PromotionUsageRepository) CyclesConsumed(ctx context.Context, applicationID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, selectRenewalCyclesQuery, applicationID)
	if err != nil {
		return nil, fmt.Errorf("%w: load promotion usage for %s: %v", ErrQueryFailed, applicationID, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			key    string
			cycles int
		)
		if err := rows.Scan(&key, &cycles); err != nil {
			return nil, fmt.Errorf("%w: scan promotion usage: %v", ErrQueryFailed, err)
		}
		out[key] = cycles
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load promotion usage for %s: %v", ErrQueryFailed, applicationID, err)
	}
	return out, nil
}
