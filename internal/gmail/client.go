package gmail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/inboxdigest/internal/google"
	"github.com/teemow/inboxdigest/internal/logging"
	"github.com/teemow/inboxdigest/internal/mailbox"
)

// DefaultUserID addresses the authenticated user in Gmail API calls.
const DefaultUserID = "me"

const inboxLabel = "INBOX"

// Client wraps the Gmail Users service for one account.
type Client struct {
	svc    *gmail.UsersService
	userID string
	logger *slog.Logger
}

var _ mailbox.Mailbox = (*Client)(nil)

// NewClient creates a Gmail client authenticated with creds.
// Missing or incomplete credentials are reported as mailbox.ErrUnavailable.
func NewClient(ctx context.Context, creds google.Credentials, userID string, logger *slog.Logger) (*Client, error) {
	httpClient, err := google.HTTPClient(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", mailbox.ErrUnavailable, err)
	}
	return NewClientWithOptions(ctx, userID, logger, option.WithHTTPClient(httpClient))
}

// NewClientWithOptions creates a Gmail client from raw API client options.
func NewClientWithOptions(ctx context.Context, userID string, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gmail service: %w", mailbox.ErrUnavailable, err)
	}
	if userID == "" {
		userID = DefaultUserID
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		svc:    svc.Users,
		userID: userID,
		logger: logging.WithService(logger, "gmail"),
	}, nil
}

// FetchRecent lists up to maxCount inbox messages, newest first, and fetches each
// one in full. A message that disappears between listing and fetching is
// skipped. Listing failures are wrapped in mailbox.ErrUnavailable.
func (c *Client) FetchRecent(ctx context.Context, maxCount int) ([]mailbox.Email, error) {
	if maxCount <= 0 {
		return nil, nil
	}

	resp, err := c.svc.Messages.List(c.userID).
		LabelIds(inboxLabel).
		MaxResults(int64(maxCount)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list messages: %w", mailbox.ErrUnavailable, err)
	}

	emails := make([]mailbox.Email, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		msg, err := c.svc.Messages.Get(c.userID, ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if isNotFound(err) {
				c.logger.Warn("message vanished before fetch", slog.String("message_id", ref.Id))
				continue
			}
			return nil, fmt.Errorf("%w: failed to get message %s: %w", mailbox.ErrUnavailable, ref.Id, err)
		}
		emails = append(emails, toEmail(msg))
	}

	c.logger.Debug("fetched inbox messages",
		logging.Operation("fetch_recent"),
		slog.Int("requested", maxCount),
		slog.Int("fetched", len(emails)))

	return emails, nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
