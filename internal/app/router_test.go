package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/milpress/provisioner/internal/domain"
	"github.com/milpress/provisioner/internal/infra"
	"github.com/milpress/provisioner/internal/provider"
	"github.com/milpress/provisioner/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeResolver struct {
	identities map[string]*domain.Identity // keyed by bearer token
}

func (f *fakeResolver) ResolveCaller(_ context.Context, token string) (*domain.Identity, error) {
	if ident, ok := f.identities[token]; ok {
		return ident, nil
	}
	return nil, nil
}

type fakeIdentity struct {
	users map[string]*domain.Identity // keyed by lowercase email

	deleted []string
}

func (f *fakeIdentity) FindUserByEmail(_ context.Context, email string) (*domain.Identity, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, nil
}

func (f *fakeIdentity) CreateUser(_ context.Context, params provider.CreateUserParams) (*domain.Identity, error) {
	return &domain.Identity{ID: uuid.NewString(), Email: params.Email}, nil
}

func (f *fakeIdentity) InviteUserByEmail(_ context.Context, email, _ string) (*domain.Identity, error) {
	return &domain.Identity{ID: uuid.NewString(), Email: email}, nil
}

func (f *fakeIdentity) UpdateUserPassword(_ context.Context, _, _ string) error { return nil }

func (f *fakeIdentity) GenerateRecoveryLink(_ context.Context, _, _ string) (string, error) {
	return "", nil
}

func (f *fakeIdentity) DeleteUser(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeProfiles struct {
	rows map[uuid.UUID]*domain.AdminProfile
}

func (f *fakeProfiles) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.AdminProfile, error) {
	return f.rows[id], nil
}

func (f *fakeProfiles) Upsert(_ context.Context, _ repository.DBTX, p *domain.AdminProfile) error {
	f.rows[p.ID] = p
	return nil
}

func (f *fakeProfiles) Delete(_ context.Context, _ repository.DBTX, id uuid.UUID) error {
	delete(f.rows, id)
	return nil
}

type fakeLogs struct {
	entries []*domain.ActivityLogEntry
}

func (f *fakeLogs) Insert(_ context.Context, _ repository.DBTX, entry *domain.ActivityLogEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

// --- fixture ---

type routerFixture struct {
	router   http.Handler
	identity *fakeIdentity
	profiles *fakeProfiles
	logs     *fakeLogs

	superToken string
	adminToken string
	superID    uuid.UUID
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	superID := uuid.New()
	adminID := uuid.New()

	profiles := &fakeProfiles{rows: map[uuid.UUID]*domain.AdminProfile{
		superID: {ID: superID, Email: "root@example.com", Name: "Root", Role: domain.RoleSuperAdmin, IsActive: true},
		adminID: {ID: adminID, Email: "ops@example.com", Name: "Ops", Role: domain.RoleAdmin, IsActive: true},
	}}
	identity := &fakeIdentity{users: map[string]*domain.Identity{}}
	logs := &fakeLogs{}
	resolver := &fakeResolver{identities: map[string]*domain.Identity{
		"super-token": {ID: superID.String(), Email: "root@example.com"},
		"admin-token": {ID: adminID.String(), Email: "ops@example.com"},
	}}

	cfg := &infra.Config{
		AuthURL:            "https://auth.example.com",
		AuthServiceRoleKey: "service-key",
		AuthAnonKey:        "anon-key",
		AppName:            "Milpress",
		CORSAllowedOrigins: "*",
	}

	router := NewRouter(RouterDeps{
		Config:   cfg,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Resolver: resolver,
		Identity: identity,
		Profiles: profiles,
		Logs:     logs,
	})

	return &routerFixture{
		router:     router,
		identity:   identity,
		profiles:   profiles,
		logs:       logs,
		superToken: "super-token",
		adminToken: "admin-token",
		superID:    superID,
	}
}

func (f *routerFixture) post(t *testing.T, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/admin/users/", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// --- tests ---

func TestRouter_RejectsMissingToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.post(t, "", `{"email":"new@example.com","name":"New"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestRouter_RejectsUnknownToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.post(t, "garbage", `{"email":"new@example.com","name":"New"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ForbidsNonSuperAdmin(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.post(t, f.adminToken, `{"email":"new@example.com","name":"New"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Forbidden: super_admin only"}`, rec.Body.String())
}

func TestRouter_ForbidsNonSuperAdminDelete(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.post(t, f.adminToken, `{"action":"delete_admin","id":"abc"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_ValidationErrors(t *testing.T) {
	f := newRouterFixture(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing fields", `{}`, "Missing required fields: email, name"},
		{"invalid role", `{"email":"a@b.co","name":"A","role":"owner"}`, "Invalid role"},
		{"invalid strategy", `{"email":"a@b.co","name":"A","strategy":"carrier_pigeon"}`, "Invalid strategy"},
		{"malformed body", `{not json`, "Invalid request body"},
		{"delete without id", `{"action":"delete_admin"}`, "Missing id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.post(t, f.superToken, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decodeBody(t, rec)["error"])
		})
	}
}

func TestRouter_CreatesFreshAdmin(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.post(t, f.superToken, `{"email":"New@Example.com","name":"New Admin","role":"admin"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["created"])
	assert.Equal(t, false, body["invited"])
	assert.NotEmpty(t, body["userId"])
	assert.Nil(t, body["recoveryLink"])
	assert.Nil(t, body["tempPassword"])

	id, err := uuid.Parse(body["userId"].(string))
	require.NoError(t, err)
	profile := f.profiles.rows[id]
	require.NotNil(t, profile)
	assert.Equal(t, "new@example.com", profile.Email)

	require.Len(t, f.logs.entries, 1)
	assert.Equal(t, domain.AuditAdminCreated, f.logs.entries[0].Action)
	assert.Equal(t, f.superID.String(), f.logs.entries[0].ActorID)
}

func TestRouter_ReusesExistingIdentity(t *testing.T) {
	f := newRouterFixture(t)
	f.identity.users["present@example.com"] = &domain.Identity{ID: uuid.NewString(), Email: "present@example.com"}

	rec := f.post(t, f.superToken, `{"email":"present@example.com","name":"Present"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["created"])
	assert.Equal(t, f.identity.users["present@example.com"].ID, body["userId"])
}

func TestRouter_DeleteAdmin(t *testing.T) {
	f := newRouterFixture(t)
	targetID := uuid.New()
	f.profiles.rows[targetID] = &domain.AdminProfile{ID: targetID, Email: "gone@example.com", Role: domain.RoleAdmin}

	rec := f.post(t, f.superToken, `{"action":"delete_admin","id":"`+targetID.String()+`"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":true,"id":"`+targetID.String()+`"}`, rec.Body.String())
	assert.Equal(t, []string{targetID.String()}, f.identity.deleted)
	assert.NotContains(t, f.profiles.rows, targetID)
}

func TestRouter_DeleteAdminIdempotent(t *testing.T) {
	f := newRouterFixture(t)
	id := uuid.NewString()

	for i := 0; i < 2; i++ {
		rec := f.post(t, f.superToken, `{"action":"delete_admin","id":"`+id+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"deleted":true,"id":"`+id+`"}`, rec.Body.String())
	}
}

func TestRouter_Preflight(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/admin/users/", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Body.String())
}
