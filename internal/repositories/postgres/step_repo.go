package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/husnainkhadir/sop-generator/internal/models"
	"github.com/husnainkhadir/sop-generator/internal/utils"
)

type StepRepository interface {
	Insert(ctx context.Context, step *models.Step) error
	GetByID(ctx context.Context, id int64) (*models.Step, error)
	ListBySop(ctx context.Context, sopID int64) ([]models.Step, error)
	Update(ctx context.Context, step *models.Step) error
}

type stepRepo struct {
	db *gorm.DB
}

func NewStepRepo(db *gorm.DB) StepRepository {
	return &stepRepo{db: db}
}

func (r *stepRepo) Insert(ctx context.Context, step *models.Step) error {
	return r.db.WithContext(ctx).Create(step).Error
}

func (r *stepRepo) GetByID(ctx context.Context, id int64) (*models.Step, error) {
	var row models.Step
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *stepRepo) ListBySop(ctx context.Context, sopID int64) ([]models.Step, error) {
	var rows []models.Step
	err := r.db.WithContext(ctx).
		Where("sop_id = ?", sopID).
		Order(`"order" ASC`).
		Find(&rows).Error
	return rows, err
}

func (r *stepRepo) Update(ctx context.Context, step *models.Step) error {
	return r.db.WithContext(ctx).Save(step).Error
}
