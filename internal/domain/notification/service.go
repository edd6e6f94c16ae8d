package notification

import (
	"context"
	"strings"

	"servicecenter/internal/core/apperror"
	appctx "servicecenter/internal/core/context"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/core/tx"
	"servicecenter/internal/core/validate"
	"servicecenter/internal/domain/auth"
	"servicecenter/pkg/logger"
)

// Service raises and resolves staff notifications.
type Service struct {
	txm  tx.Manager
	repo Repository
}

// NewService creates the notification service.
func NewService(txm tx.Manager, repo Repository) *Service {
	return &Service{txm: txm, repo: repo}
}

// List returns every unresolved notification.
func (s *Service) List(ctx context.Context) ([]Notification, error) {
	return s.repo.ListOpen(ctx, "")
}

// Count returns how many notifications are unresolved.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.CountOpen(ctx)
}

// Mine returns the unresolved notifications of the signed-in user.
func (s *Service) Mine(ctx context.Context) ([]Notification, error) {
	username := appctx.GetUsername(ctx)
	if username == "" {
		return nil, apperror.NewUnauthorized("no user in context")
	}
	return s.repo.ListOpen(ctx, username)
}

// Create raises the same task for every assignee. Either all rows land or none do.
func (s *Service) Create(ctx context.Context, in CreateInput) ([]Notification, error) {
	in.Details = strings.TrimSpace(in.Details)
	names := make([]string, 0, len(in.AssignedTo))
	seen := make(map[string]bool, len(in.AssignedTo))
	for _, name := range in.AssignedTo {
		name = auth.NormalizeName(name)
		if key := strings.ToLower(name); !seen[key] {
			seen[key] = true
			names = append(names, name)
		}
	}
	in.AssignedTo = names
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}

	out := make([]Notification, 0, len(names))
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, name := range names {
			n := Notification{Details: in.Details, AssignedTo: name, Resolved: entity.No}
			if err := s.repo.Create(ctx, &n); err != nil {
				return err
			}
			out = append(out, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithComponent("notification").Infow("notification raised",
		"assignees", len(out))
	return out, nil
}

// Resolve closes a notification.
func (s *Service) Resolve(ctx context.Context, id int64) error {
	if err := s.repo.Resolve(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).WithComponent("notification").Infow("notification resolved", "id", id)
	return nil
}
