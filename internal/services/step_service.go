package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/datatypes"

	"github.com/husnainkhadir/sop-generator/internal/models"
	pgrepo "github.com/husnainkhadir/sop-generator/internal/repositories/postgres"
	"github.com/husnainkhadir/sop-generator/internal/utils"
)

// StepUpdate carries a partial update; nil fields are left unchanged.
type StepUpdate struct {
	Order          *int
	Instruction    *string
	Screenshot     *string
	RecordingURL   *string
	Transcription  *string
	RefinedContent *string
	Metadata       *datatypes.JSON
}

type StepService interface {
	Create(ctx context.Context, step *models.Step) (*models.Step, error)
	ListBySop(ctx context.Context, sopID int64) ([]models.Step, error)
	Update(ctx context.Context, id int64, upd StepUpdate) (*models.Step, error)
}

type stepService struct {
	steps pgrepo.StepRepository
	sops  pgrepo.SopRepository
}

func NewStepService(steps pgrepo.StepRepository, sops pgrepo.SopRepository) StepService {
	return &stepService{steps: steps, sops: sops}
}

func (s *stepService) Create(ctx context.Context, step *models.Step) (*models.Step, error) {
	const op = "StepService.Create"

	if step.SopID <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "sop_id is required", nil)
	}
	if step.Order <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "order must be > 0", nil)
	}
	if strings.TrimSpace(step.Instruction) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "instruction is required", nil)
	}

	// reject steps for a sop that does not exist
	if _, err := s.sops.GetByID(ctx, step.SopID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "sop_id references a missing sop", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to verify sop", err)
	}

	if err := s.steps.Insert(ctx, step); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create step", err)
	}
	return step, nil
}

func (s *stepService) ListBySop(ctx context.Context, sopID int64) ([]models.Step, error) {
	const op = "StepService.ListBySop"

	if sopID <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "sop_id must be > 0", nil)
	}

	out, err := s.steps.ListBySop(ctx, sopID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list steps", err)
	}
	return out, nil
}

func (s *stepService) Update(ctx context.Context, id int64, upd StepUpdate) (*models.Step, error) {
	const op = "StepService.Update"

	if id <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "id must be > 0", nil)
	}

	existing, err := s.steps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "step not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get step", err)
	}

	if upd.Order != nil {
		existing.Order = *upd.Order
	}
	if upd.Instruction != nil {
		existing.Instruction = *upd.Instruction
	}
	if upd.Screenshot != nil {
		existing.Screenshot = *upd.Screenshot
	}
	if upd.RecordingURL != nil {
		existing.RecordingURL = *upd.RecordingURL
	}
	if upd.Transcription != nil {
		existing.Transcription = *upd.Transcription
	}
	if upd.RefinedContent != nil {
		existing.RefinedContent = *upd.RefinedContent
	}
	if upd.Metadata != nil {
		existing.Metadata = *upd.Metadata
	}

	if err := s.steps.Update(ctx, existing); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update step", err)
	}
	return existing, nil
}
