package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/motherland-app/admin-console-api/internal/models"
	"github.com/motherland-app/admin-console-api/pkg/config"
	appErrors "github.com/motherland-app/admin-console-api/pkg/errors"
)

// VerifiedUser is the provider's answer to a successful password check.
type VerifiedUser struct {
	UID   string
	Email string
}

// IdentityClient verifies email/password credentials against the hosted
// identity provider's verifyPassword endpoint. The console never stores
// passwords itself.
type IdentityClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   *zap.Logger
}

// NewIdentityClient builds a provider client from config.
func NewIdentityClient(cfg config.AuthProviderConfig, logger *zap.Logger) *IdentityClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IdentityClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.WebAPIKey,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type verifyPasswordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type verifyPasswordResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// VerifyPassword checks the credentials and returns the provider uid. Known
// provider rejections map to typed errors so the console can distinguish an
// unknown account from a bad password.
func (c *IdentityClient) VerifyPassword(ctx context.Context, email, password string) (models.Session, error) {
	payload, err := json.Marshal(verifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return models.Session{}, fmt.Errorf("marshal verify request: %w", err)
	}

	url := fmt.Sprintf("%s/accounts:signInWithPassword?key=%s", c.endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return models.Session{}, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Session{}, fmt.Errorf("verify password: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Session{}, fmt.Errorf("verify password: read body: %w", err)
	}

	var decoded verifyPasswordResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return models.Session{}, fmt.Errorf("verify password: decode: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return models.Session{}, c.mapProviderError(decoded)
	}

	return models.Session{UID: decoded.LocalID, Email: decoded.Email}, nil
}

func (c *IdentityClient) mapProviderError(decoded verifyPasswordResponse) error {
	message := ""
	if decoded.Error != nil {
		message = decoded.Error.Message
	}

	switch {
	case strings.HasPrefix(message, "EMAIL_NOT_FOUND"):
		return appErrors.ErrUserNotFound
	case strings.HasPrefix(message, "INVALID_PASSWORD"),
		strings.HasPrefix(message, "INVALID_LOGIN_CREDENTIALS"):
		return appErrors.ErrInvalidCredentials
	case strings.HasPrefix(message, "INVALID_EMAIL"):
		return appErrors.ErrInvalidEmail
	default:
		c.logger.Warn("unexpected provider rejection", zap.String("message", message))
		return appErrors.Clone(appErrors.ErrUnauthorized, "sign-in rejected by identity provider")
	}
}
