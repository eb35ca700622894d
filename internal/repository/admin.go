package repository

import (
	"context"
	"time"

	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/models"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/storage"
	"gorm.io/gorm"
)

type AdminRepository struct {
	db *storage.Postgres
}

func NewAdminRepository(db *storage.Postgres) *AdminRepository {
	return &AdminRepository{db: db}
}

// Inserts a new admin
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	return r.db.DB.WithContext(ctx).Create(admin).Error
}

// Retrieves admin by email, nil when absent
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.DB.WithContext(ctx).
		Where("email = ?", email).
		First(&admin).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &admin, nil
}

func (r *AdminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.Admin{}).
		Count(&count).Error

	return count, err
}

func (r *AdminRepository) TouchLastLogin(ctx context.Context, admin *models.Admin) error {
	return r.db.DB.WithContext(ctx).
		Model(admin).
		Update("last_login_at", time.Now().UTC()).Error
}
