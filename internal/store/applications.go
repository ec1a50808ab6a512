package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"formation-engine/internal/models"
)

const (
	selectApplicationQuery = `SELECT data, version, created_at, updated_at FROM formation_applications WHERE id = $1`

	updateApplicationQuery = `UPDATE formation_applications
SET status = $1, freezone_id = $2, formation_step = $3, completion_percentage = $4, data = $5, version = version + 1, updated_at = $6
WHERE id = $7 AND version = $8`
)

// FormationRepository reads and writes applications and their workflow
// instances. Application writes are guarded by the version column.
type FormationRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewFormationRepository(db *sql.DB) *FormationRepository {
	return &FormationRepository{db: db, now: time.Now}
}

// GetApplication loads an application. The data column holds the full
// aggregate as JSON.
func (r *FormationRepository) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	return getApplication(ctx, r.db, id)
}

func getApplication(ctx context.Context, q querier, id string) (*models.Application, error) {
	var (
		data    []byte
		app     models.Application
		version int64
		created time.Time
		updated time.Time
	)
	err := q.QueryRowContext(ctx, selectApplicationQuery, id).Scan(&data, &version, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrApplicationNotFound, id)
		}
		return nil, fmt.Errorf("%w: load application %s: %v", ErrQueryFailed, id, err)
	}
	if err := json.Unmarshal(data, &app); err != nil {
		return nil, fmt.Errorf("%w: decode application %s: %v", ErrQueryFailed, id, err)
	}

	app.ID = id
	app.Version = version
	app.CreatedAt = created
	app.UpdatedAt = updated
	return &app, nil
}

// SaveApplication writes app if its version is unchanged since it was read,
// then bumps app.Version.
func (r *FormationRepository) SaveApplication(ctx context.Context, app *models.Application) error {
	return r.saveApplication(ctx, r.db, app)
}

func (r *FormationRepository) saveApplication(ctx context.Context, ex execer, app *models.Application) error {
	data, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("encode application %s: %w", app.ID, err)
	}

	now := r.now().UTC()
	res, err := ex.ExecContext(ctx, updateApplicationQuery,
		app.Status, app.FreezoneID, app.FormationStep, app.CompletionPercentage, data, now,
		app.ID, app.Version,
	)
	if err != nil {
		return fmt.Errorf("%w: update application %s: %v", ErrQueryFailed, app.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update application %s: %v", ErrQueryFailed, app.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: application %s at version %d", ErrConcurrentModification, app.ID, app.Version)
	}

	app.Version++
	app.UpdatedAt = now
	return nil
}
