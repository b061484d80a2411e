package gmail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/inboxdigest/internal/google"
	"github.com/teemow/inboxdigest/internal/mailbox"
)

type fakeGmail struct {
	messages  map[string]*gmail.Message
	order     []string
	listFails bool
	query     string
}

func (f *fakeGmail) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const prefix = "/gmail/v1/users/me/messages"
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == prefix:
		f.query = r.URL.RawQuery
		if f.listFails {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":401,"message":"invalid credentials"}}`))
			return
		}
		resp := &gmail.ListMessagesResponse{}
		for _, id := range f.order {
			resp.Messages = append(resp.Messages, &gmail.Message{Id: id})
		}
		_ = json.NewEncoder(w).Encode(resp)
	case strings.HasPrefix(r.URL.Path, prefix+"/"):
		id := strings.TrimPrefix(r.URL.Path, prefix+"/")
		msg, ok := f.messages[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(msg)
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClientWithOptions(context.Background(), "", nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return client
}

func TestFetchRecent(t *testing.T) {
	fake := &fakeGmail{
		order: []string{"m1", "gone", "m2"},
		messages: map[string]*gmail.Message{
			"m1": {
				Id:      "m1",
				Snippet: "first",
				Payload: &gmail.MessagePart{
					Headers: []*gmail.MessagePartHeader{{Name: "Subject", Value: "One"}},
					Body:    &gmail.MessagePartBody{Data: encode("body one")},
				},
			},
			"m2": {
				Id:      "m2",
				Payload: &gmail.MessagePart{Headers: []*gmail.MessagePartHeader{{Name: "from", Value: "x@example.com"}}},
			},
		},
	}
	client := newTestClient(t, fake)

	emails, err := client.FetchRecent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, emails, 2)

	assert.Contains(t, fake.query, "labelIds=INBOX")
	assert.Contains(t, fake.query, "maxResults=3")

	assert.Equal(t, "One", emails[0].Subject)
	require.NotNil(t, emails[0].BodyPreview)
	assert.Equal(t, "body one", *emails[0].BodyPreview)

	assert.Equal(t, "x@example.com", emails[1].Sender)
	assert.Equal(t, mailbox.DefaultSnippet, emails[1].Snippet)
	assert.Nil(t, emails[1].BodyPreview)
}

func TestFetchRecentListFailure(t *testing.T) {
	client := newTestClient(t, &fakeGmail{listFails: true})

	_, err := client.FetchRecent(context.Background(), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, mailbox.ErrUnavailable)
}

func TestFetchRecentZero(t *testing.T) {
	client := newTestClient(t, &fakeGmail{})

	emails, err := client.FetchRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, emails)
}

func TestNewClientMissingCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), google.Credentials{}, "me", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, mailbox.ErrUnavailable)
}
