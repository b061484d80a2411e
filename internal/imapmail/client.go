package imapmail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/teemow/inboxdigest/internal/logging"
	"github.com/teemow/inboxdigest/internal/mailbox"
)

const inbox = "INBOX"

// DialTimeout bounds the TCP connect and the TLS handshake. An earlier
// context deadline takes precedence.
const DialTimeout = 30 * time.Second

// Settings identify an IMAP account.
type Settings struct {
	Addr     string
	Username string
	Password string
}

// Validate checks that every field is set.
func (s Settings) Validate() error {
	if s.Addr == "" || s.Username == "" || s.Password == "" {
		return fmt.Errorf("incomplete IMAP settings: address, username and password are required")
	}
	return nil
}

// conn is the subset of *client.Client used here.
type conn interface {
	Login(username, password string) error
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	Logout() error
}

type dialFunc func(ctx context.Context, addr string) (conn, error)

func dialTLS(ctx context.Context, addr string) (conn, error) {
	c, err := client.DialWithDialerTLS(newDialer(ctx), addr, &tls.Config{MinVersion: tls.VersionTLS12})
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		c.Timeout = time.Until(deadline)
	}
	return c, nil
}

func newDialer(ctx context.Context) *net.Dialer {
	d := &net.Dialer{Timeout: DialTimeout}
	if deadline, ok := ctx.Deadline(); ok {
		d.Deadline = deadline
	}
	return d
}

// Client fetches messages from one IMAP account. A new connection is opened
// for every FetchRecent call.
type Client struct {
	settings Settings
	dial     dialFunc
	logger   *slog.Logger
}

var _ mailbox.Mailbox = (*Client)(nil)

// NewClient creates an IMAP client for settings.
func NewClient(settings Settings, logger *slog.Logger) (*Client, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", mailbox.ErrUnavailable, err)
	}
	return newClient(settings, dialTLS, logger), nil
}

func newClient(settings Settings, dial dialFunc, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		settings: settings,
		dial:     dial,
		logger:   logging.WithService(logger, "imap"),
	}
}

// FetchRecent returns up to maxCount inbox messages, newest first.
// Connection, login and fetch failures are wrapped in mailbox.ErrUnavailable.
func (c *Client) FetchRecent(ctx context.Context, maxCount int) ([]mailbox.Email, error) {
	if maxCount <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := c.dial(ctx, c.settings.Addr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to %s: %w", mailbox.ErrUnavailable, c.settings.Addr, err)
	}
	defer func() {
		if err := conn.Logout(); err != nil {
			c.logger.Debug("logout failed", logging.Err(err))
		}
	}()

	if err := conn.Login(c.settings.Username, c.settings.Password); err != nil {
		return nil, fmt.Errorf("%w: login failed: %w", mailbox.ErrUnavailable, err)
	}

	status, err := conn.Select(inbox, true)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to select %s: %w", mailbox.ErrUnavailable, inbox, err)
	}
	if status.Messages == 0 {
		return nil, nil
	}

	from := uint32(1)
	if status.Messages > uint32(maxCount) {
		from = status.Messages - uint32(maxCount) + 1
	}
	seqset := new(imap.SeqSet)
	seqset.AddRange(from, status.Messages)

	headers, err := fetchAll(conn, seqset, []imap.FetchItem{imap.FetchUid, imap.FetchEnvelope, imap.FetchBodyStructure})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch envelopes: %w", mailbox.ErrUnavailable, err)
	}
	sort.Slice(headers, func(i, j int) bool { return headers[i].SeqNum > headers[j].SeqNum })

	emails := make([]mailbox.Email, 0, len(headers))
	for _, msg := range headers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := c.fetchText(conn, msg)
		if err != nil {
			c.logger.Warn("failed to fetch message text",
				slog.Uint64("uid", uint64(msg.Uid)),
				logging.Err(err))
		}
		emails = append(emails, toEmail(msg, body))
	}

	c.logger.Debug("fetched inbox messages",
		logging.Operation("fetch_recent"),
		slog.Int("requested", maxCount),
		slog.Int("fetched", len(emails)))

	return emails, nil
}

func (c *Client) fetchText(conn conn, msg *imap.Message) (string, error) {
	path, part := textPart(msg.BodyStructure)
	if part == nil {
		return "", nil
	}

	section := &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{Path: path},
		Peek:         true,
	}
	seqset := new(imap.SeqSet)
	seqset.AddNum(msg.SeqNum)

	msgs, err := fetchAll(conn, seqset, []imap.FetchItem{section.FetchItem()})
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return "", nil
	}
	literal := msgs[0].GetBody(section)
	if literal == nil {
		return "", nil
	}
	return decodePart(literal, part.Encoding)
}

func fetchAll(conn conn, seqset *imap.SeqSet, items []imap.FetchItem) ([]*imap.Message, error) {
	ch := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- conn.Fetch(seqset, items, ch)
	}()

	var msgs []*imap.Message
	for msg := range ch {
		msgs = append(msgs, msg)
	}
	return msgs, <-done
}

func toEmail(msg *imap.Message, body string) mailbox.Email {
	email := mailbox.Email{
		ID:          strconv.FormatUint(uint64(msg.Uid), 10),
		Subject:     mailbox.DefaultSubject,
		Sender:      mailbox.DefaultSender,
		Date:        mailbox.DefaultDate,
		Snippet:     mailbox.DefaultSnippet,
		BodyPreview: mailbox.Preview(body),
	}

	if env := msg.Envelope; env != nil {
		email.Subject = mailbox.OrDefault(env.Subject, mailbox.DefaultSubject)
		if len(env.From) > 0 && env.From[0] != nil {
			email.Sender = mailbox.OrDefault(formatAddress(env.From[0]), mailbox.DefaultSender)
		}
		if !env.Date.IsZero() {
			email.Date = env.Date.Format(time.RFC1123Z)
		}
	}
	if s := snippet(body); s != "" {
		email.Snippet = s
	}
	return email
}

func formatAddress(addr *imap.Address) string {
	address := addr.Address()
	if addr.PersonalName == "" {
		return address
	}
	if address == "" {
		return addr.PersonalName
	}
	return fmt.Sprintf("%s <%s>", addr.PersonalName, address)
}
