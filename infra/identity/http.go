package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/amirasaad/custodia/pkg/domain"
)

// HTTPDirectory talks to a hosted identity-toolkit style directory over
// its REST API. The ledger only needs three calls: sign-up, delete and
// sign-in. The directory's tokens are not used past verification; the
// ledger issues its own.
type HTTPDirectory struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPDirectory creates a directory client.
func NewHTTPDirectory(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type credentialRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type identityResponse struct {
	ID string `json:"localId"`
}

// CreateIdentity provisions a credential via the sign-up endpoint.
func (d *HTTPDirectory) CreateIdentity(ctx context.Context, email, pass string) (string, error) {
	var resp identityResponse
	err := d.post(ctx, "accounts:signUp", credentialRequest{Email: email, Password: pass}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// DeleteIdentity removes a credential.
func (d *HTTPDirectory) DeleteIdentity(ctx context.Context, identityID string) error {
	return d.post(ctx, "accounts:delete", map[string]string{"localId": identityID}, nil)
}

// SignIn verifies a credential via the password sign-in endpoint.
func (d *HTTPDirectory) SignIn(ctx context.Context, email, pass string) error {
	err := d.post(ctx, "accounts:signInWithPassword", credentialRequest{Email: email, Password: pass}, nil)
	if err != nil {
		d.logger.Debug("directory sign-in rejected", "email", email, "error", err)
		return domain.ErrInvalidCredentials
	}
	return nil
}

func (d *HTTPDirectory) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/%s?key=%s", d.baseURL, endpoint, d.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("identity directory %s returned %d", endpoint, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
