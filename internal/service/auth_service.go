package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/motherland-app/admin-console-api/internal/dto"
	"github.com/motherland-app/admin-console-api/internal/models"
	appErrors "github.com/motherland-app/admin-console-api/pkg/errors"
)

type credentialVerifier interface {
	VerifyPassword(ctx context.Context, email, password string) (models.Session, error)
}

// AuthConfig defines configuration for the console session tokens.
type AuthConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
}

// AuthServiceParams wires the session gate.
type AuthServiceParams struct {
	Verifier  credentialVerifier
	Profiles  profileRepository
	Audit     auditWriter
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    AuthConfig
}

// AuthService signs admins in through the hosted identity provider and gates
// the console on the Admin profile type. Anyone else is turned away even
// with valid credentials; the console never keeps a session for them.
type AuthService struct {
	verifier  credentialVerifier
	profiles  profileRepository
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(p AuthServiceParams) *AuthService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Validator == nil {
		p.Validator = validator.New()
	}
	return &AuthService{
		verifier:  p.Verifier,
		profiles:  p.Profiles,
		audit:     p.Audit,
		validator: p.Validator,
		logger:    p.Logger,
		config:    p.Config,
	}
}

// Login verifies the credentials with the provider, checks the Admin gate
// and issues a console session token.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	session, err := s.verifier.VerifyPassword(ctx, req.Email, req.Password)
	if err != nil {
		s.recordLogin(ctx, models.Session{Email: req.Email}, models.OutcomeDenied, "provider rejected credentials")
		return nil, appErrors.FromError(err)
	}

	info, ok, err := s.profiles.GetProfile(ctx, session.UID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	if !ok || info.UserType != models.UserTypeAdmin {
		s.recordLogin(ctx, session, models.OutcomeDenied, "account is not an admin")
		return nil, appErrors.Clone(appErrors.ErrForbidden, "this account is not authorised for the admin console")
	}
	session.UserType = info.UserType
	session.FullName = info.FullName

	token, expiresAt, err := s.generateToken(session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}

	s.recordLogin(ctx, session, models.OutcomeOK, "")

	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: int64(time.Until(expiresAt).Seconds()),
		UID:       session.UID,
		Email:     session.Email,
		FullName:  session.FullName,
		UserType:  session.UserType,
	}, nil
}

// Logout records the end of a console session. Tokens are stateless, so the
// client simply discards its copy; the audit trail keeps the sign-out.
func (s *AuthService) Logout(ctx context.Context, session models.Session) {
	if s.audit == nil {
		return
	}
	err := s.audit.Insert(ctx, models.AuditLog{
		ActorUID: session.UID,
		Action:   models.ActionLogout,
		Resource: "auth",
		Outcome:  models.OutcomeOK,
	})
	if err != nil {
		s.logger.Warn("failed to record logout audit log", zap.Error(err))
	}
}

// ValidateToken parses and validates a session token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateToken(session models.Session) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.TokenExpiry)
	claims := &models.JWTClaims{
		UID:      session.UID,
		Email:    session.Email,
		FullName: session.FullName,
		UserType: session.UserType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   session.UID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) recordLogin(ctx context.Context, session models.Session, outcome, detail string) {
	if s.audit == nil {
		return
	}

	action := models.ActionLogin
	if outcome != models.OutcomeOK {
		action = models.ActionLoginDenied
	}

	err := s.audit.Insert(ctx, models.AuditLog{
		ActorUID: session.UID,
		Action:   action,
		Resource: "auth",
		Outcome:  outcome,
		Detail:   detail,
	})
	if err != nil {
		s.logger.Warn("failed to record login audit log", zap.Error(err))
	}
}
