package imapmail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-imap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/inboxdigest/internal/mailbox"
)

type fakeMessage struct {
	msg   *imap.Message
	texts map[string]string
}

type fakeConn struct {
	messages  map[uint32]fakeMessage
	total     uint32
	loginErr  error
	selectErr error
	loggedOut bool
	readOnly  bool
	requested *imap.SeqSet
}

func (f *fakeConn) Login(username, password string) error { return f.loginErr }

func (f *fakeConn) Select(name string, readOnly bool) (*imap.MailboxStatus, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	f.readOnly = readOnly
	return &imap.MailboxStatus{Name: name, Messages: f.total}, nil
}

func (f *fakeConn) Fetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error {
	defer close(ch)

	if items[0] == imap.FetchUid {
		f.requested = seqset
		for seq, m := range f.messages {
			if seqset.Contains(seq) {
				ch <- m.msg
			}
		}
		return nil
	}

	section, err := imap.ParseBodySectionName(items[0])
	if err != nil {
		return err
	}
	for seq, m := range f.messages {
		if !seqset.Contains(seq) {
			continue
		}
		text, ok := m.texts[pathKey(section.Path)]
		if !ok {
			return errors.New("no such section")
		}
		out := imap.NewMessage(seq, nil)
		out.Body = map[*imap.BodySectionName]imap.Literal{
			{BodyPartName: imap.BodyPartName{Path: section.Path}}: bytes.NewBufferString(text),
		}
		ch <- out
	}
	return nil
}

func (f *fakeConn) Logout() error {
	f.loggedOut = true
	return nil
}

func pathKey(path []int) string {
	var b strings.Builder
	for i, p := range path {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteByte(byte('0' + p))
	}
	return b.String()
}

func plainMessage(seq, uid uint32, subject string) *imap.Message {
	msg := imap.NewMessage(seq, nil)
	msg.Uid = uid
	msg.Envelope = &imap.Envelope{
		Subject: subject,
		Date:    time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		From:    []*imap.Address{{PersonalName: "Alice", MailboxName: "alice", HostName: "example.com"}},
	}
	msg.BodyStructure = &imap.BodyStructure{MIMEType: "text", MIMESubType: "plain"}
	return msg
}

func testClient(fc *fakeConn) *Client {
	return newClient(Settings{Addr: "imap.example.com:993", Username: "u", Password: "p"},
		func(context.Context, string) (conn, error) { return fc, nil }, nil)
}

func TestFetchRecentNewestFirst(t *testing.T) {
	conn := &fakeConn{
		total: 3,
		messages: map[uint32]fakeMessage{
			2: {msg: plainMessage(2, 20, "older"), texts: map[string]string{"1": "older body"}},
			3: {msg: plainMessage(3, 30, "newest"), texts: map[string]string{"1": "newest body"}},
		},
	}

	emails, err := testClient(conn).FetchRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, emails, 2)

	assert.True(t, conn.readOnly)
	assert.True(t, conn.loggedOut)
	assert.Equal(t, "2:3", conn.requested.String())

	assert.Equal(t, "30", emails[0].ID)
	assert.Equal(t, "newest", emails[0].Subject)
	assert.Equal(t, "Alice <alice@example.com>", emails[0].Sender)
	assert.Equal(t, "Wed, 01 May 2024 09:30:00 +0000", emails[0].Date)
	require.NotNil(t, emails[0].BodyPreview)
	assert.Equal(t, "newest body", *emails[0].BodyPreview)
	assert.Equal(t, "newest body", emails[0].Snippet)

	assert.Equal(t, "older", emails[1].Subject)
}

func TestFetchRecentMissingText(t *testing.T) {
	msg := plainMessage(1, 10, "")
	msg.Envelope.From = nil
	msg.BodyStructure = &imap.BodyStructure{MIMEType: "image", MIMESubType: "png"}
	conn := &fakeConn{total: 1, messages: map[uint32]fakeMessage{1: {msg: msg}}}

	emails, err := testClient(conn).FetchRecent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, emails, 1)

	assert.Equal(t, mailbox.DefaultSubject, emails[0].Subject)
	assert.Equal(t, mailbox.DefaultSender, emails[0].Sender)
	assert.Equal(t, mailbox.DefaultSnippet, emails[0].Snippet)
	assert.Nil(t, emails[0].BodyPreview)
}

func TestFetchRecentEmptyInbox(t *testing.T) {
	emails, err := testClient(&fakeConn{}).FetchRecent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, emails)
}

func TestFetchRecentFailures(t *testing.T) {
	tests := []struct {
		name   string
		client *Client
	}{
		{
			name: "dial",
			client: newClient(Settings{Addr: "x"}, func(context.Context, string) (conn, error) {
				return nil, errors.New("connection refused")
			}, nil),
		},
		{
			name:   "login",
			client: testClient(&fakeConn{loginErr: errors.New("bad password")}),
		},
		{
			name:   "select",
			client: testClient(&fakeConn{selectErr: errors.New("no inbox")}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.client.FetchRecent(context.Background(), 5)
			require.Error(t, err)
			assert.ErrorIs(t, err, mailbox.ErrUnavailable)
		})
	}
}

func TestNewClientValidates(t *testing.T) {
	_, err := NewClient(Settings{Addr: "imap.example.com:993"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, mailbox.ErrUnavailable)
}

func TestNewDialer(t *testing.T) {
	d := newDialer(context.Background())
	assert.Equal(t, DialTimeout, d.Timeout)
	assert.True(t, d.Deadline.IsZero())

	deadline := time.Now().Add(2 * time.Second)
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	d = newDialer(ctx)
	assert.Equal(t, DialTimeout, d.Timeout)
	assert.Equal(t, deadline, d.Deadline)
}

func TestFetchRecentDialsWithContext(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "run-1")

	var dialed context.Context
	c := newClient(Settings{Addr: "imap.example.com:993", Username: "u", Password: "p"},
		func(ctx context.Context, _ string) (conn, error) {
			dialed = ctx
			return nil, errors.New("connection refused")
		}, nil)

	_, err := c.FetchRecent(ctx, 5)
	require.Error(t, err)
	require.NotNil(t, dialed)
	assert.Equal(t, "run-1", dialed.Value(ctxKey{}))
}
