package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/models"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/pkg/apperror"
	"github.com/workkeaco-commits/networkk-web-sub001/internal/repository/common"
)

type ContractRepository struct {
	db *sqlx.DB
}

func NewContractRepository(db *sqlx.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// GetByID возвращает контракт по идентификатору.
func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return common.GetByID[models.Contract](ctx, r.db, "contracts", id, apperror.ErrContractNotFound)
}

// ListProposalMilestones возвращает условия этапов принятого предложения
// в порядке позиций.
func (r *ContractRepository) ListProposalMilestones(ctx context.Context, proposalID uuid.UUID) ([]models.ProposalMilestone, error) {
	var terms []models.ProposalMilestone
	query := `
		SELECT id, proposal_id, position, title, amount, duration_days, start_day_offset, end_day_offset, created_at
		FROM proposal_milestones
		WHERE proposal_id = $1
		ORDER BY position ASC, created_at ASC
	`
	if err := r.db.SelectContext(ctx, &terms, query, proposalID); err != nil {
		return nil, fmt.Errorf("contract repository: list proposal milestones %w", err)
	}
	return terms, nil
}
