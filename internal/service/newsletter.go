package service

import (
	"context"
	"fmt"

	"github.com/gemora/gemora/internal/models"
	"github.com/gemora/gemora/internal/repo"
	"github.com/gemora/gemora/internal/validation"
	"github.com/gemora/gemora/pkg/logging"
)

type NewsletterService struct {
	Repo *repo.GormRepo
}

func (s *NewsletterService) Subscribe(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "newsletter.subscribe", "email", email)

	if !validation.IsValidEmail(email) {
		l.Warn("subscribe_failed", "status", 400, "reason", "invalid_email_format")
		return fmt.Errorf("%w: %s", ErrEmailValidation, email)
	}

	exists, err := s.Repo.NewsletterEmailExists(ctx, email)
	if err != nil {
		l.Error("subscribe_failed", "status", 500, "error", err)
		return err
	}
	if exists {
		l.Warn("subscribe_failed", "status", 409, "reason", "email_exists")
		return ErrEmailExists
	}

	if err := s.Repo.SaveNewsletterEmail(ctx, &models.Newsletter{EmailAddress: email}); err != nil {
		l.Error("subscribe_failed", "status", 500, "error", err)
		return err
	}

	l.Info("subscribe_success")
	return nil
}
