// internal/common/auth/keycloak.go
package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"partner-dashboard/internal/common/errors"
	commonhttp "partner-dashboard/internal/common/http"
)

// Identity is the authenticated caller behind a bearer token.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// IdentityResolver turns a bearer token into an Identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}

// KeycloakClient resolves access tokens against a Keycloak realm.
type KeycloakClient struct {
	baseURL string
	realm   string
	client  *commonhttp.Client
}

// userInfo is the subset of the OpenID Connect userinfo response we read.
type userInfo struct {
	Sub               string `json:"sub"`
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
}

// NewKeycloakClient creates a new instance of KeycloakClient.
func NewKeycloakClient(baseURL, realm string, timeout time.Duration) *KeycloakClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &KeycloakClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		realm:   realm,
		client:  commonhttp.NewClient(timeout),
	}
}

// Resolve calls the realm's userinfo endpoint with the caller's token.
// Every failure, including transport errors, is reported as
// UNAUTHENTICATED: the caller cannot be identified either way.
func (k *KeycloakClient) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, errors.NewUnauthenticatedError("empty bearer token")
	}

	userInfoURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/userinfo", k.baseURL, k.realm)

	var info userInfo
	err := k.client.GetJSON(ctx, userInfoURL, map[string]string{"Authorization": "Bearer " + token}, &info)
	if err != nil {
		var se *commonhttp.StatusError
		if stderrors.As(err, &se) {
			return nil, errors.NewUnauthenticatedError(fmt.Sprintf("userinfo rejected the token with status %d", se.StatusCode))
		}
		return nil, errors.NewUnauthenticatedError(err.Error())
	}

	if info.Sub == "" {
		return nil, errors.NewUnauthenticatedError("userinfo response carries no subject")
	}

	email := info.Email
	if email == "" && strings.Contains(info.PreferredUsername, "@") {
		email = info.PreferredUsername
	}
	return &Identity{ID: info.Sub, Email: email}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
