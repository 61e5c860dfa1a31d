package handler

import (
	"net/http"

	"github.com/milpress/provisioner/internal/auth"
	"github.com/milpress/provisioner/internal/domain"
	"github.com/milpress/provisioner/internal/service"
)

// AdminUserHandler provisions administrative accounts.
type AdminUserHandler struct {
	svc *service.ProvisioningService
}

// NewAdminUserHandler creates a new AdminUserHandler.
func NewAdminUserHandler(svc *service.ProvisioningService) *AdminUserHandler {
	return &AdminUserHandler{svc: svc}
}

// ProvisionAdmin handles POST /admin/users. The payload's action flag selects
// between the create/reuse flow and the delete flow; both require the caller
// to hold the super_admin role.
func (h *AdminUserHandler) ProvisionAdmin(w http.ResponseWriter, r *http.Request) {
	caller := auth.IdentityFromContext(r.Context())
	if caller == nil {
		RespondError(w, domain.ErrUnauthenticated())
		return
	}

	if err := h.svc.Authorize(r.Context(), caller); err != nil {
		RespondError(w, err)
		return
	}

	var payload domain.ProvisionPayload
	if err := DecodeJSON(r, &payload); err != nil {
		RespondError(w, domain.ErrValidation("Invalid request body"))
		return
	}

	if payload.Action == domain.ActionDeleteAdmin {
		res, err := h.svc.DeleteAdmin(r.Context(), caller, payload.TargetID())
		if err != nil {
			RespondError(w, err)
			return
		}
		RespondJSON(w, http.StatusOK, res)
		return
	}

	res, err := h.svc.Provision(r.Context(), caller, payload.Input())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}
