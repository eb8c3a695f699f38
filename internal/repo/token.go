package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/gemora/gemora/internal/models"
)

func (r *GormRepo) SaveToken(ctx context.Context, token *models.Token) error {
	return r.DB.WithContext(ctx).Create(token).Error
}

func (r *GormRepo) FindValidTokensByUser(ctx context.Context, userID uint) ([]models.Token, error) {
	var toks []models.Token
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND expired = ? AND revoked = ?", userID, false, false).
		Find(&toks).Error; err != nil {
		return nil, err
	}
	return toks, nil
}

func revokeAllUserTokens(db *gorm.DB, userID uint) error {
	return db.Model(&models.Token{}).
		Where("user_id = ? AND expired = ? AND revoked = ?", userID, false, false).
		Updates(map[string]any{"expired": true, "revoked": true}).Error
}

func (r *GormRepo) RevokeAllUserTokens(ctx context.Context, userID uint) error {
	return revokeAllUserTokens(r.DB.WithContext(ctx), userID)
}

// RotateUserToken revokes every valid token the user still holds and stores the
// freshly issued one in the same transaction, so concurrent logins cannot leave
// two valid token sets behind.
func (r *GormRepo) RotateUserToken(ctx context.Context, userID uint, newToken *models.Token) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := revokeAllUserTokens(tx, userID); err != nil {
			return err
		}
		return tx.Create(newToken).Error
	})
}

func (r *GormRepo) FindToken(ctx context.Context, token string) (*models.Token, error) {
	var stored models.Token
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}
