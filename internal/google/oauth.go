package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

// ErrInvalidGrant is returned by CheckRefreshToken when Google rejects the
// refresh token as expired or revoked.
var ErrInvalidGrant = errors.New("refresh token is invalid or revoked")

// Credentials are the OAuth2 secrets of one mailbox account.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
}

// Validate checks that the fields needed for a refresh are present.
func (c Credentials) Validate() error {
	var missing []string
	if c.RefreshToken == "" {
		missing = append(missing, "refresh token")
	}
	if c.ClientID == "" {
		missing = append(missing, "client ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete Google credentials: missing %v", missing)
	}
	return nil
}

// Config returns the OAuth2 configuration for read-only Gmail access.
func Config(creds Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}
}

// TokenSource returns a refreshing token source for creds.
func TokenSource(ctx context.Context, conf *oauth2.Config, creds Credentials) oauth2.TokenSource {
	return conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  creds.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: creds.RefreshToken,
		Expiry:       time.Unix(1, 0),
	})
}

// HTTPClient returns an HTTP client authenticated with creds.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors
func HTTPClient(ctx context.Context, creds Credentials) (*http.Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, TokenSource(ctx, Config(creds), creds))

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	return client, nil
}

// CheckRefreshToken exchanges the refresh token for a new access token.
// It returns ErrInvalidGrant when the grant was revoked or expired and the
// underlying error for any other failure.
func CheckRefreshToken(ctx context.Context, conf *oauth2.Config, creds Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}

	token, err := TokenSource(ctx, conf, creds).Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.ErrorCode == "invalid_grant" {
			return fmt.Errorf("%w: %s", ErrInvalidGrant, re.ErrorDescription)
		}
		return fmt.Errorf("failed to refresh access token: %w", err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("token endpoint returned no access token")
	}
	return nil
}
