package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"formation-engine/internal/common/database"
	"formation-engine/internal/models"
)

const (
	selectWorkflowQuery = `SELECT application_id FROM workflow_instances WHERE id = $1`

	selectStepsQuery = `SELECT step_number, step_type, status, error_message, updated_at
FROM workflow_steps WHERE instance_id = $1 ORDER BY step_number`

	updateStepQuery = `UPDATE workflow_steps SET status = $1, error_message = $2, updated_at = $3
WHERE instance_id = $4 AND step_number = $5 AND status = $6`
)

// GetWorkflow loads a workflow instance and its steps ordered by number.
func (r *FormationRepository) GetWorkflow(ctx context.Context, id string) (*models.WorkflowInstance, error) {
	inst := &models.WorkflowInstance{ID: id}
	err := r.db.QueryRowContext(ctx, selectWorkflowQuery, id).Scan(&inst.ApplicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, id)
		}
		return nil, fmt.Errorf("%w: load workflow %s: %v", ErrQueryFailed, id, err)
	}

	rows, err := r.db.QueryContext(ctx, selectStepsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("%w: load steps for %s: %v", ErrQueryFailed, id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			step   models.WorkflowStep
			errMsg sql.NullString
		)
		if err := rows.Scan(&step.StepNumber, &step.StepType, &step.Status, &errMsg, &step.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan step for %s: %v", ErrQueryFailed, id, err)
		}
		step.InstanceID = id
		step.ErrorMessage = errMsg.String
		inst.Steps = append(inst.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate steps for %s: %v", ErrQueryFailed, id, err)
	}
	return inst, nil
}

// RecordStepOutcome stores a step transition and the application in one
// transaction. The step must still be in status from and the application at
// its read version, otherwise ErrConcurrentModification is returned.
func (r *FormationRepository) RecordStepOutcome(ctx context.Context, app *models.Application, step models.WorkflowStep, from models.StepStatus) error {
	version := app.Version
	err := database.InTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		var errMsg sql.NullString
		if step.ErrorMessage != "" {
			errMsg = sql.NullString{String: step.ErrorMessage, Valid: true}
		}
		updatedAt := step.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = r.now().UTC()
		}

		res, err := tx.ExecContext(ctx, updateStepQuery,
			step.Status, errMsg, updatedAt, step.InstanceID, step.StepNumber, from)
		if err != nil {
			return fmt.Errorf("%w: update step %d: %v", ErrQueryFailed, step.StepNumber, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: update step %d: %v", ErrQueryFailed, step.StepNumber, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: step %d of %s is no longer %s",
				ErrConcurrentModification, step.StepNumber, step.InstanceID, from)
		}

		return r.saveApplication(ctx, tx, app)
	})
	if err != nil {
		// the bump only sticks once the transaction commits
		app.Version = version
		return err
	}
	return nil
}
