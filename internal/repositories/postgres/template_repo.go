package postgres

import (
	"context"

	"github.com/vea-connect/messaging/internal/models"
	"gorm.io/gorm"
)

type TemplateRepo interface {
	// ListActive returns active templates for a category+language,
	// most recently updated first.
	ListActive(ctx context.Context, category, language string) ([]models.Template, error)
}

type templateRepo struct {
	db *gorm.DB
}

func NewTemplateRepo(db *gorm.DB) TemplateRepo {
	return &templateRepo{db: db}
}

func (r *templateRepo) ListActive(ctx context.Context, category, language string) ([]models.Template, error) {
	var rows []models.Template
	q := r.db.WithContext(ctx).
		Where("category = ? AND is_active = ?", category, true)
	if language != "" {
		q = q.Where("language = ?", language)
	}
	err := q.Order("updated_at DESC").Find(&rows).Error
	return rows, err
}
