package domain

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ProvisionPayload is the loosely-typed request body as received. Fields are
// normalized and coerced into a ProvisionInput before any external call.
type ProvisionPayload struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsActive   *bool  `json:"isActive"`
	Strategy   string `json:"strategy"`
	RedirectTo string `json:"redirectTo"`
	Action     string `json:"action"`
	ID         any    `json:"id"`
}

// TargetID returns the delete-target id as a string, tolerating numeric ids
// from loosely-typed clients.
func (p ProvisionPayload) TargetID() string {
	switch v := p.ID.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// ProvisionInput is the strict create/reuse request after normalization and
// defaulting.
type ProvisionInput struct {
	Email      string   `validate:"required"`
	Name       string   `validate:"required"`
	Role       Role     `validate:"oneof=admin super_admin"`
	IsActive   bool
	Strategy   Strategy `validate:"oneof=auto invite temp_password"`
	RedirectTo string
}

// Input normalizes the payload: email trimmed and lowercased, name trimmed,
// role defaulted to admin, active flag to true, strategy to auto.
func (p ProvisionPayload) Input() ProvisionInput {
	in := ProvisionInput{
		Email:      NormalizeEmail(p.Email),
		Name:       strings.TrimSpace(p.Name),
		Role:       Role(p.Role),
		IsActive:   true,
		Strategy:   Strategy(p.Strategy),
		RedirectTo: strings.TrimSpace(p.RedirectTo),
	}
	if in.Role == "" {
		in.Role = RoleAdmin
	}
	if in.Strategy == "" {
		in.Strategy = StrategyAuto
	}
	if p.IsActive != nil {
		in.IsActive = *p.IsActive
	}
	return in
}

// NormalizeEmail trims and lowercases an address for case-insensitive matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the normalized input. It runs before any external call.
func (in *ProvisionInput) Validate() error {
	if in.Email == "" || in.Name == "" {
		return ErrValidation("Missing required fields: email, name")
	}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.Field() {
				case "Role":
					return ErrValidation("Invalid role")
				case "Strategy":
					return ErrValidation("Invalid strategy")
				}
			}
		}
		return ErrValidation(err.Error())
	}
	return nil
}
