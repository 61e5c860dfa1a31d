package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the access level of an administrative account.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Strategy is the policy for handing credentials to a new or reused admin.
type Strategy string

const (
	StrategyAuto         Strategy = "auto"
	StrategyInvite       Strategy = "invite"
	StrategyTempPassword Strategy = "temp_password"
)

// ActionDeleteAdmin is the payload action flag that selects the delete flow.
const ActionDeleteAdmin = "delete_admin"

// Activity log action tags.
const (
	AuditAdminCreated = "admin_created"
	AuditAdminLinked  = "admin_linked"
	AuditAdminDeleted = "admin_deleted"
)

// TargetTypeAdmin is the target_type written to the activity log.
const TargetTypeAdmin = "admin"

// AdminProfile represents an admin_profiles row. Its id always equals the
// linked auth identity's id.
type AdminProfile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity is the identity provider's account record as this service sees it.
// It is request-scoped and never persisted here.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ActivityLogEntry is one append-only audit record. Writes are best-effort:
// a failed insert never changes the outcome of the request that produced it.
type ActivityLogEntry struct {
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	Details    map[string]any
}
