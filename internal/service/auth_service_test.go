package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motherland-app/admin-console-api/internal/dto"
	"github.com/motherland-app/admin-console-api/internal/models"
	appErrors "github.com/motherland-app/admin-console-api/pkg/errors"
)

type fakeVerifier struct {
	session models.Session
	err     error
}

func (f *fakeVerifier) VerifyPassword(_ context.Context, _, _ string) (models.Session, error) {
	if f.err != nil {
		return models.Session{}, f.err
	}
	return f.session, nil
}

func newAuthService(verifier *fakeVerifier, profiles map[string]models.PersonalInfo, audit *fakeAudit) *AuthService {
	params := AuthServiceParams{
		Verifier: verifier,
		Profiles: &fakeProfileRepo{profiles: profiles},
		Config: AuthConfig{
			TokenSecret: "test-secret",
			TokenExpiry: time.Hour,
			Issuer:      "console-test",
		},
	}
	// A nil fake pointer must stay out of the interface field, or the
	// service's nil check sees a non-nil interface.
	if audit != nil {
		params.Audit = audit
	}
	return NewAuthService(params)
}

func TestLoginAdmin(t *testing.T) {
	audit := &fakeAudit{}
	svc := newAuthService(
		&fakeVerifier{session: models.Session{UID: "u1", Email: "admin@example.com"}},
		map[string]models.PersonalInfo{
			"u1": {Email: "admin@example.com", FullName: "Ade Admin", UserType: models.UserTypeAdmin},
		},
		audit,
	)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "admin@example.com", Password: "secret"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "u1", resp.UID)
	assert.Equal(t, "Ade Admin", resp.FullName)
	assert.Equal(t, models.UserTypeAdmin, resp.UserType)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UID)
	assert.Equal(t, "Ade Admin", claims.FullName)
	assert.Equal(t, models.UserTypeAdmin, claims.UserType)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.ActionLogin, audit.entries[0].Action)
}

func TestLoginNonAdminForcedOut(t *testing.T) {
	audit := &fakeAudit{}
	svc := newAuthService(
		&fakeVerifier{session: models.Session{UID: "u2", Email: "inst@example.com"}},
		map[string]models.PersonalInfo{
			"u2": {Email: "inst@example.com", UserType: models.UserTypeInstructor},
		},
		audit,
	)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "inst@example.com", Password: "secret"})

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrForbidden.Code, typed.Code)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.ActionLoginDenied, audit.entries[0].Action)
}

func TestLoginMissingProfileForcedOut(t *testing.T) {
	svc := newAuthService(
		&fakeVerifier{session: models.Session{UID: "u3", Email: "new@example.com"}},
		nil,
		nil,
	)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "new@example.com", Password: "secret"})

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrForbidden.Code, typed.Code)
}

func TestLoginProviderErrorPassesThrough(t *testing.T) {
	svc := newAuthService(&fakeVerifier{err: appErrors.ErrUserNotFound}, nil, nil)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ghost@example.com", Password: "secret"})

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrUserNotFound.Code, typed.Code)
}

func TestLoginValidatesPayload(t *testing.T) {
	svc := newAuthService(&fakeVerifier{}, nil, nil)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "not-an-email", Password: ""})

	var typed *appErrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, appErrors.ErrValidation.Code, typed.Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(&fakeVerifier{}, nil, nil)

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
