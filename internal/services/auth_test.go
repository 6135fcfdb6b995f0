package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-portal/internal/dto"
	"equipment-portal/internal/entities"
	"equipment-portal/internal/repositories"
	"equipment-portal/pkg/apiclient"
	apperrors "equipment-portal/pkg/errors"
)

type fakeAuth struct {
	loginResp   *dto.UpstreamAuthDTO
	loginErr    error
	refreshResp *dto.UpstreamAuthDTO
	refreshErr  error
	refreshedBy string
	logoutToken string
	meUser      *entities.User
	meErr       error
	meToken     string
}

func (f *fakeAuth) Login(context.Context, dto.LoginDTO) (*dto.UpstreamAuthDTO, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuth) Refresh(_ context.Context, rt string) (*dto.UpstreamAuthDTO, error) {
	f.refreshedBy = rt
	return f.refreshResp, f.refreshErr
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.logoutToken = apiclient.TokenFromContext(ctx)
	return errBackendDown
}

func (f *fakeAuth) Me(ctx context.Context) (*entities.User, error) {
	f.meToken = apiclient.TokenFromContext(ctx)
	if f.meErr != nil {
		return nil, f.meErr
	}
	if f.meUser != nil {
		return f.meUser, nil
	}
	return &entities.User{ID: "1"}, nil
}

func newAuthService(api *fakeAuth) (*AuthService, repositories.SessionRepositoryInterface) {
	sessions := repositories.NewSessionRepository(newMapCache())
	s := NewAuthService(api, sessions, nil, time.Hour, zap.NewNop())
	s.now = func() time.Time { return testNow }
	s.newID = func() string { return "sess-1" }
	return s, sessions
}

func TestAuth_LoginStoresSession(t *testing.T) {
	api := &fakeAuth{loginResp: &dto.UpstreamAuthDTO{
		Token:        "legacy-token",
		RefreshToken: "rt-1",
		User:         entities.User{ID: "3", Name: "Олег", Role: "manager", BranchID: "2"},
	}}
	s, _ := newAuthService(api)

	session, err := s.Login(context.Background(), dto.LoginDTO{Email: "a@b.c", Password: "secret1"})

	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.ID)
	assert.Equal(t, "legacy-token", session.AccessToken)
	assert.Equal(t, testNow.Add(time.Hour), session.ExpiresAt)

	p, err := s.ResolveSession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "manager", p.Role)
	assert.Equal(t, "legacy-token", p.Token)
	assert.Equal(t, "sess-1", p.SessionID)
}

func TestAuth_LoginWrongPassword(t *testing.T) {
	api := &fakeAuth{loginErr: &apiclient.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}}
	s, _ := newAuthService(api)

	_, err := s.Login(context.Background(), dto.LoginDTO{Email: "a@b.c", Password: "secret1"})

	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.False(t, errors.Is(err, apiclient.ErrUnauthorized), "wrong password must not look like an expired session")
}

func TestAuth_LoginWithoutToken(t *testing.T) {
	s, _ := newAuthService(&fakeAuth{loginResp: &dto.UpstreamAuthDTO{}})
	_, err := s.Login(context.Background(), dto.LoginDTO{})
	assert.Error(t, err)
}

func TestAuth_Refresh(t *testing.T) {
	api := &fakeAuth{
		loginResp:   &dto.UpstreamAuthDTO{AccessToken: "a1", RefreshToken: "r1", User: entities.User{ID: "3"}},
		refreshResp: &dto.UpstreamAuthDTO{AccessToken: "a2"},
	}
	s, sessions := newAuthService(api)
	_, err := s.Login(context.Background(), dto.LoginDTO{})
	require.NoError(t, err)

	session, err := s.Refresh(context.Background(), "sess-1")

	require.NoError(t, err)
	assert.Equal(t, "r1", api.refreshedBy)
	assert.Equal(t, "a2", session.AccessToken)
	assert.Equal(t, "r1", session.RefreshToken, "old refresh token kept when backend does not rotate it")
	stored, err := sessions.Find(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "a2", stored.AccessToken)
}

func TestAuth_RefreshRejectedDropsSession(t *testing.T) {
	api := &fakeAuth{
		loginResp:  &dto.UpstreamAuthDTO{AccessToken: "a1", RefreshToken: "r1"},
		refreshErr: &apiclient.APIError{Status: http.StatusUnauthorized},
	}
	s, _ := newAuthService(api)
	_, err := s.Login(context.Background(), dto.LoginDTO{})
	require.NoError(t, err)

	_, err = s.Refresh(context.Background(), "sess-1")
	require.Error(t, err)

	_, err = s.ResolveSession(context.Background(), "sess-1")
	assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))
}

func TestAuth_RefreshWithoutRefreshToken(t *testing.T) {
	api := &fakeAuth{loginResp: &dto.UpstreamAuthDTO{AccessToken: "a1"}}
	s, _ := newAuthService(api)
	_, err := s.Login(context.Background(), dto.LoginDTO{})
	require.NoError(t, err)

	_, err = s.Refresh(context.Background(), "sess-1")
	assert.True(t, errors.Is(err, apperrors.ErrRefreshUnavailable))
}

func TestAuth_LogoutSurvivesBackendFailure(t *testing.T) {
	api := &fakeAuth{loginResp: &dto.UpstreamAuthDTO{AccessToken: "a1"}}
	s, _ := newAuthService(api)
	_, err := s.Login(context.Background(), dto.LoginDTO{})
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background(), "sess-1"))
	assert.Equal(t, "a1", api.logoutToken)

	_, err = s.ResolveSession(context.Background(), "sess-1")
	assert.True(t, errors.Is(err, apperrors.ErrSessionNotFound))
	assert.NoError(t, s.Logout(context.Background(), "sess-1"), "second logout is a no-op")
}

func TestAuth_VerifyTokenTakesRoleFromBackend(t *testing.T) {
	api := &fakeAuth{meUser: &entities.User{ID: "5", Role: "technician", BranchID: "2"}}
	s, _ := newAuthService(api)

	p, err := s.VerifyToken(context.Background(), "bearer-1")

	require.NoError(t, err)
	assert.Equal(t, "bearer-1", api.meToken)
	assert.Equal(t, "technician", p.Role)
	assert.Equal(t, "2", p.BranchID.String())
	assert.True(t, p.Verified)
}

func TestAuth_VerifyTokenRejected(t *testing.T) {
	api := &fakeAuth{meErr: &apiclient.APIError{Status: http.StatusUnauthorized}}
	s, _ := newAuthService(api)

	_, err := s.VerifyToken(context.Background(), "forged")

	assert.True(t, errors.Is(err, apiclient.ErrUnauthorized))
}

func TestAuth_ResolvedSessionIsVerified(t *testing.T) {
	api := &fakeAuth{loginResp: &dto.UpstreamAuthDTO{AccessToken: "a1", User: entities.User{ID: "3", Role: "admin"}}}
	s, _ := newAuthService(api)
	_, err := s.Login(context.Background(), dto.LoginDTO{})
	require.NoError(t, err)

	p, err := s.ResolveSession(context.Background(), "sess-1")

	require.NoError(t, err)
	assert.True(t, p.Verified)
}
