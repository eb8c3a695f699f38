package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/gemora/gemora/internal/repo"
)

type UserService struct {
	Repo *repo.GormRepo
}

type UserDto struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func (s *UserService) GetUser(ctx context.Context, email string) (*UserDto, error) {
	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &UserDto{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
	}, nil
}
