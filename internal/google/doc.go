// Package google provides OAuth2 authentication for the Gmail API from
// long-lived credentials: a client ID and secret plus a refresh token
// obtained once through the consent flow.
//
// The access token that accompanies the refresh token is treated as expired,
// so the first request always refreshes it. CheckRefreshToken performs that
// refresh eagerly to tell a revoked grant apart from other failures.
package google
