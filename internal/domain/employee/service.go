package employee

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

// Service manages the staff register.
type Service struct {
	txm      tx.Manager
	repo     Repository
	accounts Accounts
}

// NewService creates the employee service.
func NewService(txm tx.Manager, repo Repository, accounts Accounts) *Service {
	return &Service{txm: txm, repo: repo, accounts: accounts}
}

// List returns active employees, admins first, then users, then technicians.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	return s.repo.ListActive(ctx, RoleOrder)
}

// ListStandard returns active users and technicians.
func (s *Service) ListStandard(ctx context.Context) ([]Summary, error) {
	return s.repo.ListActive(ctx, []string{appctx.RoleUser, appctx.RoleTechnician})
}

// Create registers an employee and, for admins and users, their login account.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Employee, error) {
	in.Name = auth.NormalizeName(in.Name)
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))
	if in.Role == "" {
		in.Role = appctx.RoleTechnician
	}
	if in.PAN != nil {
		in.PAN = entity.Ptr(strings.ToUpper(strings.TrimSpace(*in.PAN)))
	}
	if err := validate.Struct(&in); err != nil {
		return nil, err
	}
	if HasLogin(in.Role) && in.Password == "" {
		return nil, apperror.NewValidation("password is required for "+in.Role).
			WithDetail("field", "password")
	}

	e := &Employee{
		Name:        in.Name,
		DOB:         entity.DateOf(in.DOB),
		PhoneNumber: in.PhoneNumber,
		Address:     strings.TrimSpace(in.Address),
		Email:       in.Email,
		Aadhar:      in.Aadhar,
		PAN:         in.PAN,
		UAN:         in.UAN,
		PFNumber:    in.PFNumber,
		JoiningDate: entity.DateOf(in.JoiningDate),
		Role:        in.Role,
		IsActive:    entity.Yes,
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, e); err != nil {
			return err
		}
		if HasLogin(e.Role) {
			return s.accounts.CreateUser(ctx, e.Name, in.Password, e.Role)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithComponent("employee").Infow("employee created",
		"name", e.Name, "role", e.Role)
	return e, nil
}

// Delete marks an employee as left and closes their login. Nobody can remove themselves.
func (s *Service) Delete(ctx context.Context, in LeaveInput) error {
	in.Name = auth.NormalizeName(in.Name)
	if err := validate.Struct(&in); err != nil {
		return err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		e, err := s.repo.GetActive(ctx, in.Name)
		if err != nil {
			return err
		}
		if strings.EqualFold(appctx.GetUsername(ctx), e.Name) {
			return apperror.NewBusinessRule(apperror.CodeCannotDeleteCurrentUser, "Cannot delete the current user")
		}
		if e.ID == nil {
			return apperror.NewNotFoundCode(apperror.CodeEmployeeNotFound, "employee", in.Name)
		}
		if err := s.repo.Deactivate(ctx, *e.ID, entity.DateOf(in.LeavingDate)); err != nil {
			return err
		}
		if !HasLogin(e.Role) {
			return nil
		}
		// Staff registered before logins existed have no account to close.
		if err := s.accounts.DeactivateUser(ctx, e.Name); err != nil && !apperror.IsNotFound(err) {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).WithComponent("employee").Infow("employee left",
		"name", in.Name, "leaving_date", in.LeavingDate.Format("2006-01-02"))
	return nil
}
