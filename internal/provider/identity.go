package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/milpress/provisioner/internal/domain"
)

// IdentityClient talks to the identity provider's auth and admin APIs.
// Admin operations authenticate with the privileged service-role key; caller
// resolution uses the public anon key plus the caller's own bearer token.
type IdentityClient struct {
	baseURL    string
	serviceKey string
	anonKey    string
	logger     *slog.Logger
	client     *http.Client
}

// NewIdentityClient creates a new identity provider client.
func NewIdentityClient(baseURL, serviceKey, anonKey string, logger *slog.Logger) *IdentityClient {
	return &IdentityClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		anonKey:    anonKey,
		logger:     logger,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether the client holds all required settings.
func (c *IdentityClient) Configured() bool {
	return c.baseURL != "" && c.serviceKey != "" && c.anonKey != ""
}

// CreateUserParams are the fields for direct identity creation.
type CreateUserParams struct {
	Email        string         `json:"email"`
	Password     string         `json:"password"`
	EmailConfirm bool           `json:"email_confirm"`
	Metadata     map[string]any `json:"user_metadata,omitempty"`
}

// ResolveCaller resolves a caller bearer token into an identity.
func (c *IdentityClient) ResolveCaller(ctx context.Context, token string) (*domain.Identity, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/v1/user", nil, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	var ident domain.Identity
	if err := c.do(req, &ident); err != nil {
		return nil, err
	}
	if ident.ID == "" {
		return nil, fmt.Errorf("caller resolution returned no identity")
	}
	return &ident, nil
}

// FindUserByEmail looks up an existing identity by normalized email. The
// match is case-insensitive against each candidate; returns nil when no
// identity matches.
func (c *IdentityClient) FindUserByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	query := url.Values{}
	query.Set("page", "1")
	query.Set("per_page", "1")
	query.Set("email", email)

	req, err := c.newAdminRequest(ctx, http.MethodGet, "/auth/v1/admin/users", query, nil)
	if err != nil {
		return nil, err
	}

	var list struct {
		Users []domain.Identity `json:"users"`
	}
	if err := c.do(req, &list); err != nil {
		return nil, err
	}

	for _, u := range list.Users {
		if strings.ToLower(u.Email) == email && u.ID != "" {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

// CreateUser creates an identity directly, optionally pre-confirmed.
func (c *IdentityClient) CreateUser(ctx context.Context, params CreateUserParams) (*domain.Identity, error) {
	req, err := c.newAdminRequest(ctx, http.MethodPost, "/auth/v1/admin/users", nil, params)
	if err != nil {
		return nil, err
	}

	var ident domain.Identity
	if err := c.do(req, &ident); err != nil {
		return nil, err
	}
	return &ident, nil
}

// InviteUserByEmail sends an invitation email, creating the identity.
func (c *IdentityClient) InviteUserByEmail(ctx context.Context, email, redirectTo string) (*domain.Identity, error) {
	var query url.Values
	if redirectTo != "" {
		query = url.Values{}
		query.Set("redirect_to", redirectTo)
	}

	body := map[string]string{"email": email}
	req, err := c.newAdminRequest(ctx, http.MethodPost, "/auth/v1/invite", query, body)
	if err != nil {
		return nil, err
	}

	var ident domain.Identity
	if err := c.do(req, &ident); err != nil {
		return nil, err
	}
	return &ident, nil
}

// UpdateUserPassword rotates an identity's password credential.
func (c *IdentityClient) UpdateUserPassword(ctx context.Context, id, password string) error {
	body := map[string]string{"password": password}
	req, err := c.newAdminRequest(ctx, http.MethodPut, "/auth/v1/admin/users/"+url.PathEscape(id), nil, body)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// GenerateRecoveryLink asks the provider for a password-recovery action link.
func (c *IdentityClient) GenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error) {
	body := map[string]any{
		"type":  "recovery",
		"email": email,
	}
	if redirectTo != "" {
		body["redirect_to"] = redirectTo
	}

	req, err := c.newAdminRequest(ctx, http.MethodPost, "/auth/v1/admin/generate_link", nil, body)
	if err != nil {
		return "", err
	}

	// The link shows up top-level or nested depending on the provider version.
	var res struct {
		ActionLink string `json:"action_link"`
		Properties struct {
			ActionLink string `json:"action_link"`
		} `json:"properties"`
	}
	if err := c.do(req, &res); err != nil {
		return "", err
	}
	if res.Properties.ActionLink != "" {
		return res.Properties.ActionLink, nil
	}
	return res.ActionLink, nil
}

// DeleteUser removes an identity by id.
func (c *IdentityClient) DeleteUser(ctx context.Context, id string) error {
	req, err := c.newAdminRequest(ctx, http.MethodDelete, "/auth/v1/admin/users/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *IdentityClient) newAdminRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	return req, nil
}

func (c *IdentityClient) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do executes the request and decodes a JSON response into out when non-nil.
// Non-2xx statuses become errors carrying the response body text.
func (c *IdentityClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("identity api %s %s: status %d: %s",
			req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode identity response: %w", err)
	}
	return nil
}
