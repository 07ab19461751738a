package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/husnainkhadir/sop-generator/internal/models"
	pgrepo "github.com/husnainkhadir/sop-generator/internal/repositories/postgres"
	"github.com/husnainkhadir/sop-generator/internal/utils"
)

type SopService interface {
	Create(ctx context.Context, title, description string, tags []string) (*models.Sop, error)
	Get(ctx context.Context, id int64) (*models.Sop, error)
	List(ctx context.Context, limit int) ([]models.Sop, error)
}

type sopService struct {
	sops pgrepo.SopRepository
}

func NewSopService(sops pgrepo.SopRepository) SopService {
	return &sopService{sops: sops}
}

func (s *sopService) Create(ctx context.Context, title, description string, tags []string) (*models.Sop, error) {
	const op = "SopService.Create"

	if strings.TrimSpace(title) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title is required", nil)
	}

	sop := &models.Sop{
		Title:       title,
		Description: description,
		Tags:        tags,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.sops.Insert(ctx, sop); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create sop", err)
	}
	return sop, nil
}

func (s *sopService) Get(ctx context.Context, id int64) (*models.Sop, error) {
	const op = "SopService.Get"

	if id <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "id must be > 0", nil)
	}

	out, err := s.sops.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "sop not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get sop", err)
	}
	return out, nil
}

func (s *sopService) List(ctx context.Context, limit int) ([]models.Sop, error) {
	const op = "SopService.List"

	out, err := s.sops.List(ctx, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sops", err)
	}
	return out, nil
}
