package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/husnainkhadir/sop-generator/internal/models"
	"github.com/husnainkhadir/sop-generator/internal/utils"
)

type SopRepository interface {
	Insert(ctx context.Context, sop *models.Sop) error
	GetByID(ctx context.Context, id int64) (*models.Sop, error)
	List(ctx context.Context, limit int) ([]models.Sop, error)
}

type sopRepo struct {
	db *gorm.DB
}

func NewSopRepo(db *gorm.DB) SopRepository {
	return &sopRepo{db: db}
}

func (r *sopRepo) Insert(ctx context.Context, sop *models.Sop) error {
	return r.db.WithContext(ctx).Create(sop).Error
}

func (r *sopRepo) GetByID(ctx context.Context, id int64) (*models.Sop, error) {
	var row models.Sop
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *sopRepo) List(ctx context.Context, limit int) ([]models.Sop, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.Sop
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
