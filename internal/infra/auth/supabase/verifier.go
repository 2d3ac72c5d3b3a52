package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken means the bearer token was rejected: expired, malformed
	// or not issued for this project.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUnavailable means the auth provider could not be reached after
	// retries. Callers should answer 503 to invite a retry.
	ErrUnavailable = errors.New("auth provider unavailable")
)

// Verifier resolves a Supabase access token to a user id. When the project
// JWT secret is configured, tokens are verified locally without a network
// round trip; otherwise (or when local verification fails, e.g. after a
// secret rotation) the token is checked against the auth REST endpoint.
type Verifier struct {
	baseURL   string
	anonKey   string
	jwtSecret string
	http      *http.Client
	retries   int
	backoff   time.Duration
}

func NewVerifier(baseURL, anonKey, jwtSecret string) *Verifier {
	return &Verifier{
		baseURL:   strings.TrimRight(baseURL, "/"),
		anonKey:   anonKey,
		jwtSecret: jwtSecret,
		http:      &http.Client{Timeout: 10 * time.Second},
		retries:   2,
		backoff:   200 * time.Millisecond,
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	if v.jwtSecret != "" {
		if id, err := v.verifyLocal(token); err == nil {
			return id, nil
		}
	}
	return v.verifyRemote(ctx, token)
}

func (v *Verifier) verifyLocal(token string) (string, error) {
	parsed, err := jwt.Parse(token,
		func(t *jwt.Token) (interface{}, error) { return []byte(v.jwtSecret), nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience("authenticated"),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

func (v *Verifier) verifyRemote(ctx context.Context, token string) (string, error) {
	for attempt := 0; ; attempt++ {
		id, retryable, err := v.fetchUser(ctx, token)
		if err == nil {
			return id, nil
		}
		if !retryable {
			return "", err
		}
		if attempt >= v.retries {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		case <-time.After(v.backoff << attempt):
		}
	}
}

func (v *Verifier) fetchUser(ctx context.Context, token string) (id string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("apikey", v.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.http.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var user struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			return "", false, fmt.Errorf("decode auth response: %w", err)
		}
		if user.ID == "" {
			return "", false, ErrInvalidToken
		}
		return user.ID, false, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", false, ErrInvalidToken
	case resp.StatusCode >= 500:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", true, fmt.Errorf("auth status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	default:
		return "", false, fmt.Errorf("auth status %d: %w", resp.StatusCode, ErrInvalidToken)
	}
}
