package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/milpress/provisioner/internal/domain"
	"github.com/milpress/provisioner/internal/provider"
	"github.com/milpress/provisioner/internal/repository"
)

// IdentityAPI is the slice of the identity provider's admin surface the
// provisioning workflow consumes.
type IdentityAPI interface {
	FindUserByEmail(ctx context.Context, email string) (*domain.Identity, error)
	CreateUser(ctx context.Context, params provider.CreateUserParams) (*domain.Identity, error)
	InviteUserByEmail(ctx context.Context, email, redirectTo string) (*domain.Identity, error)
	UpdateUserPassword(ctx context.Context, id, password string) error
	GenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error)
	DeleteUser(ctx context.Context, id string) error
}

// MailBranding carries the application fields used in account emails.
type MailBranding struct {
	AppName  string
	LoginURL string
}

// ProvisioningService orchestrates admin account provisioning across the
// identity provider, the profile store, and the optional mail provider.
type ProvisioningService struct {
	pool     *pgxpool.Pool
	profiles repository.ProfileRepository
	logs     repository.ActivityLogRepository
	identity IdentityAPI
	mailer   provider.Mailer // nil when no mail provider is configured
	branding MailBranding
	logger   *slog.Logger
}

// NewProvisioningService creates a new ProvisioningService.
func NewProvisioningService(
	pool *pgxpool.Pool,
	profiles repository.ProfileRepository,
	logs repository.ActivityLogRepository,
	identity IdentityAPI,
	mailer provider.Mailer,
	branding MailBranding,
	logger *slog.Logger,
) *ProvisioningService {
	return &ProvisioningService{
		pool:     pool,
		profiles: profiles,
		logs:     logs,
		identity: identity,
		mailer:   mailer,
		branding: branding,
		logger:   logger,
	}
}

// ProvisionResult is the success response of the create/reuse flow.
type ProvisionResult struct {
	UserID       string  `json:"userId"`
	Created      bool    `json:"created"`
	Invited      bool    `json:"invited"`
	RecoveryLink *string `json:"recoveryLink"`
	TempPassword *string `json:"tempPassword"`
}

// DeleteResult is the success response of the delete flow.
type DeleteResult struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Authorize checks that the caller's own profile row exists and carries the
// super_admin role. A failed lookup surfaces the store error; a missing row
// or a lesser role is forbidden.
func (s *ProvisioningService) Authorize(ctx context.Context, caller *domain.Identity) error {
	id, err := uuid.Parse(caller.ID)
	if err != nil {
		return domain.ErrUpstream("Failed to read caller profile", err)
	}

	profile, err := s.profiles.FindByID(ctx, s.pool, id)
	if err != nil {
		return domain.ErrUpstream("Failed to read caller profile", err)
	}
	if profile == nil || profile.Role != domain.RoleSuperAdmin {
		return domain.ErrForbidden("Forbidden: super_admin only")
	}
	return nil
}

// DeleteAdmin removes an admin account: the auth identity, the profile row,
// and an audit entry, each best-effort. The response reports success as long
// as a target id was supplied, making repeated deletes idempotent.
func (s *ProvisioningService) DeleteAdmin(ctx context.Context, caller *domain.Identity, targetID string) (*DeleteResult, error) {
	if targetID == "" {
		return nil, domain.ErrValidation("Missing id")
	}

	if err := s.identity.DeleteUser(ctx, targetID); err != nil {
		// The identity may already be gone; profile cleanup proceeds anyway.
		s.logger.Warn("delete identity failed", "target_id", targetID, "error", err)
	}

	if id, err := uuid.Parse(targetID); err == nil {
		if err := s.profiles.Delete(ctx, s.pool, id); err != nil {
			s.logger.Warn("delete profile failed", "target_id", targetID, "error", err)
		}
	}

	s.audit(ctx, &domain.ActivityLogEntry{
		ActorID:    caller.ID,
		Action:     domain.AuditAdminDeleted,
		TargetType: domain.TargetTypeAdmin,
		TargetID:   targetID,
		Details:    map[string]any{},
	})

	return &DeleteResult{Deleted: true, ID: targetID}, nil
}

// Provision creates or reuses an auth identity per the requested strategy,
// upserts the matching profile row, and appends an audit entry.
func (s *ProvisioningService) Provision(ctx context.Context, caller *domain.Identity, in domain.ProvisionInput) (*ProvisionResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var (
		targetID     string
		created      bool
		invited      bool
		recoveryLink *string
		tempPassword *string
	)

	// Lookup failures fall through to the creation branch; the provider's
	// own duplicate check is the backstop.
	existing, err := s.identity.FindUserByEmail(ctx, in.Email)
	if err != nil {
		s.logger.Warn("identity lookup failed", "email", in.Email, "error", err)
	} else if existing != nil {
		targetID = existing.ID
	}

	if targetID == "" {
		switch in.Strategy {
		case domain.StrategyInvite:
			ident, err := s.identity.InviteUserByEmail(ctx, in.Email, in.RedirectTo)
			if err != nil {
				return nil, domain.ErrUpstream("Invite failed", err)
			}
			targetID = ident.ID
			created = true
			invited = true

		default: // auto or temp_password: create pre-confirmed with a random credential
			pw, err := domain.TempPassword(domain.TempPasswordLength)
			if err != nil {
				return nil, domain.ErrUnexpected(err)
			}
			ident, err := s.identity.CreateUser(ctx, provider.CreateUserParams{
				Email:        in.Email,
				Password:     pw,
				EmailConfirm: true,
				Metadata:     map[string]any{"name": in.Name},
			})
			if err != nil {
				return nil, domain.ErrUpstream("Create user failed", err)
			}
			targetID = ident.ID
			created = true

			if in.Strategy == domain.StrategyTempPassword {
				tempPassword = &pw
			} else if in.RedirectTo != "" {
				recoveryLink = s.tryRecoveryLink(ctx, in.Email, in.RedirectTo)
			}
		}
	} else {
		switch in.Strategy {
		case domain.StrategyInvite:
			// Existing account holders get a recovery link to (re)set a password.
			recoveryLink = s.tryRecoveryLink(ctx, in.Email, in.RedirectTo)

		case domain.StrategyTempPassword:
			pw, err := domain.TempPassword(domain.TempPasswordLength)
			if err != nil {
				return nil, domain.ErrUnexpected(err)
			}
			if err := s.identity.UpdateUserPassword(ctx, targetID, pw); err != nil {
				return nil, domain.ErrUpstream("Update password failed", err)
			}
			tempPassword = &pw
		}
	}

	if targetID == "" {
		return nil, domain.ErrInternal("No user id returned from identity provider")
	}

	profileID, err := uuid.Parse(targetID)
	if err != nil {
		return nil, domain.ErrUpstream("Invalid user id from identity provider", err)
	}
	profile := &domain.AdminProfile{
		ID:       profileID,
		Email:    in.Email,
		Name:     in.Name,
		Role:     in.Role,
		IsActive: in.IsActive,
	}
	if err := s.profiles.Upsert(ctx, s.pool, profile); err != nil {
		return nil, domain.ErrUpstream("Profile upsert failed", err)
	}

	action := domain.AuditAdminLinked
	if created {
		action = domain.AuditAdminCreated
	}
	s.audit(ctx, &domain.ActivityLogEntry{
		ActorID:    caller.ID,
		Action:     action,
		TargetType: domain.TargetTypeAdmin,
		TargetID:   targetID,
		Details: map[string]any{
			"email":     in.Email,
			"name":      in.Name,
			"role":      string(in.Role),
			"is_active": in.IsActive,
			"invited":   invited,
		},
	})

	if tempPassword != nil {
		s.sendTempPasswordEmail(ctx, in.Email, in.Name, *tempPassword)
	}

	return &ProvisionResult{
		UserID:       targetID,
		Created:      created,
		Invited:      invited,
		RecoveryLink: recoveryLink,
		TempPassword: tempPassword,
	}, nil
}

// tryRecoveryLink asks the provider for a recovery link; the link is optional
// and failures are discarded.
func (s *ProvisioningService) tryRecoveryLink(ctx context.Context, email, redirectTo string) *string {
	link, err := s.identity.GenerateRecoveryLink(ctx, email, redirectTo)
	if err != nil {
		s.logger.Warn("generate recovery link failed", "email", email, "error", err)
		return nil
	}
	if link == "" {
		return nil
	}
	return &link
}

// audit appends an activity log entry; failures are logged and discarded.
func (s *ProvisioningService) audit(ctx context.Context, entry *domain.ActivityLogEntry) {
	if err := s.logs.Insert(ctx, s.pool, entry); err != nil {
		s.logger.Warn("activity log insert failed", "action", entry.Action, "error", err)
	}
}
