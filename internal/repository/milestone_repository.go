package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/models"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/pkg/apperror"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/repository/common"
)

type MilestoneRepository struct {
	db *sqlx.DB
}

func NewMilestoneRepository(db *sqlx.DB) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

// GetByID возвращает этап по идентификатору.
func (r *MilestoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Milestone, error) {
	return common.GetByID[models.Milestone](ctx, r.db, "milestones", id, apperror.ErrMilestoneNotFound)
}

// ListByContract возвращает этапы контракта в порядке позиций.
func (r *MilestoneRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.Milestone, error) {
	var milestones []models.Milestone
	query := `SELECT * FROM milestones WHERE contract_id = $1 ORDER BY position ASC, created_at ASC`
	if err := r.db.SelectContext(ctx, &milestones, query, contractID); err != nil {
		return nil, fmt.Errorf("milestone repository: list by contract %w", err)
	}
	return milestones, nil
}

// CountByContract возвращает число этапов контракта.
func (r *MilestoneRepository) CountByContract(ctx context.Context, contractID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM milestones WHERE contract_id = $1`
	if err := r.db.GetContext(ctx, &count, query, contractID); err != nil {
		return 0, fmt.Errorf("milestone repository: count by contract %w", err)
	}
	return count, nil
}

// InsertBatch вставляет этапы расписания одним запросом.
func (r *MilestoneRepository) InsertBatch(ctx context.Context, milestones []models.Milestone) error {
	if len(milestones) == 0 {
		return nil
	}

	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		inserter := common.NewBatchInserter(tx, `
			INSERT INTO milestones (id, contract_id, position, title, amount, start_day_offset, end_day_offset,
				due_date, due_at, client_confirm_deadline_at, status)
		`, 11, len(milestones))

		for _, m := range milestones {
			if err := inserter.Add(ctx,
				m.ID, m.ContractID, m.Position, m.Title, m.Amount, m.StartDayOffset, m.EndDayOffset,
				m.DueDate, m.DueAt, m.ClientConfirmDeadlineAt, m.Status,
			); err != nil {
				return err
			}
		}

		return inserter.Flush(ctx)
	})
}

// MarkSubmitted переводит этап в статус submitted, если он ещё не терминален.
func (r *MilestoneRepository) MarkSubmitted(ctx context.Context, milestoneID uuid.UUID, now time.Time) error {
	query := `
		UPDATE milestones
		SET status = $2, submitted_at = $3, updated_at = NOW()
		WHERE id = $1 AND status IN ($4, $2)
	`
	res, err := r.db.ExecContext(ctx, query, milestoneID, models.MilestoneStatusSubmitted, now, models.MilestoneStatusPending)
	if err != nil {
		return fmt.Errorf("milestone repository: mark submitted %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperror.ErrMilestoneFinal
	}
	return nil
}

// MarkRejected фиксирует отклонение сдачи: rejected_at проставляется
// один раз, статус этапа остаётся submitted (возможна повторная сдача).
func (r *MilestoneRepository) MarkRejected(ctx context.Context, milestoneID uuid.UUID, now time.Time) error {
	query := `
		UPDATE milestones
		SET rejected_at = COALESCE(rejected_at, $2), updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, milestoneID, now); err != nil {
		return fmt.Errorf("milestone repository: mark rejected %w", err)
	}
	return nil
}

// GetSubmission возвращает сдачу работы по идентификатору.
func (r *MilestoneRepository) GetSubmission(ctx context.Context, id uuid.UUID) (*models.MilestoneSubmission, error) {
	return common.GetByID[models.MilestoneSubmission](ctx, r.db, "milestone_submissions", id, apperror.ErrSubmissionNotFound)
}

// ListSubmissions возвращает сдачи этапа от старых к новым.
func (r *MilestoneRepository) ListSubmissions(ctx context.Context, milestoneID uuid.UUID) ([]models.MilestoneSubmission, error) {
	var submissions []models.MilestoneSubmission
	query := `
		SELECT * FROM milestone_submissions
		WHERE milestone_id = $1
		ORDER BY submitted_at ASC, version ASC
	`
	if err := r.db.SelectContext(ctx, &submissions, query, milestoneID); err != nil {
		return nil, fmt.Errorf("milestone repository: list submissions %w", err)
	}
	return submissions, nil
}

// NextSubmissionVersion возвращает следующую версию сдачи для этапа.
func (r *MilestoneRepository) NextSubmissionVersion(ctx context.Context, milestoneID uuid.UUID) (int, error) {
	var version int
	query := `SELECT COALESCE(MAX(version), 0) + 1 FROM milestone_submissions WHERE milestone_id = $1`
	if err := r.db.GetContext(ctx, &version, query, milestoneID); err != nil {
		return 0, fmt.Errorf("milestone repository: next submission version %w", err)
	}
	return version, nil
}

// CreateSubmission вставляет новую сдачу работы.
func (r *MilestoneRepository) CreateSubmission(ctx context.Context, s *models.MilestoneSubmission) error {
	query := `
		INSERT INTO milestone_submissions (id, milestone_id, version, submission_url, notes, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	if err := r.db.GetContext(ctx, &s.CreatedAt, query,
		s.ID, s.MilestoneID, s.Version, s.SubmissionURL, s.Notes, s.Status, s.SubmittedAt,
	); err != nil {
		return fmt.Errorf("milestone repository: create submission %w", err)
	}
	return nil
}

// DecideSubmission фиксирует решение по сдаче работы.
func (r *MilestoneRepository) DecideSubmission(ctx context.Context, id uuid.UUID, status, decidedBy string, reason *string, now time.Time) error {
	query := `
		UPDATE milestone_submissions
		SET status = $2, decided_at = $3, decided_by = $4, decision_reason = $5
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, status, now, decidedBy, reason)
	if err != nil {
		return fmt.Errorf("milestone repository: decide submission %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperror.ErrSubmissionNotFound
	}
	return nil
}
