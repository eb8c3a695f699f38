package repo

import (
	"context"

	"github.com/gemora/gemora/internal/models"
)

func (r *GormRepo) NewsletterEmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Newsletter{}).
		Where("email_address = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) SaveNewsletterEmail(ctx context.Context, entry *models.Newsletter) error {
	return r.DB.WithContext(ctx).Create(entry).Error
}
