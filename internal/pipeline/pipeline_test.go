package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/inboxdigest/internal/delivery"
	"github.com/teemow/inboxdigest/internal/grouping"
	"github.com/teemow/inboxdigest/internal/llm"
	"github.com/teemow/inboxdigest/internal/mailbox"
	"github.com/teemow/inboxdigest/internal/prompt"
	"github.com/teemow/inboxdigest/internal/report"
)

type fakeMailbox struct {
	emails []mailbox.Email
	err    error
	calls  int
	asked  int
}

func (f *fakeMailbox) FetchRecent(_ context.Context, maxCount int) ([]mailbox.Email, error) {
	f.calls++
	f.asked = maxCount
	return f.emails, f.err
}

type fakeGenerator struct {
	err   error
	calls int
}

func (f *fakeGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if strings.Contains(req.System, "NEXT STEPS:") {
		return "reply today", nil
	}
	return "a summary", nil
}

type fakeDeliverer struct {
	checkErr  error
	sendErr   error
	failAfter int
	lines     []string
	closed    int
}

func (f *fakeDeliverer) Check(context.Context) error { return f.checkErr }

func (f *fakeDeliverer) Send(_ context.Context, text string) error {
	if f.sendErr != nil && len(f.lines) >= f.failAfter {
		return f.sendErr
	}
	f.lines = append(f.lines, text)
	return nil
}

func (f *fakeDeliverer) Close() error {
	f.closed++
	return nil
}

const header = "# PRIMARY Email Report 2024-01-02 15:04"

func newPipeline(t *testing.T, mb mailbox.Mailbox, gen llm.Generator, d delivery.Deliverer) *Pipeline {
	t.Helper()
	defs := append(grouping.BuiltinDefinitions(), grouping.Definition{Name: "Spouse", Pattern: "partner@home", HighPriority: true})
	categories, err := grouping.Compile(defs)
	require.NoError(t, err)

	compiler := report.NewCompiler(report.NewBuilder(gen, nil, llm.Profile{Temperature: 1, MaxTokens: 500}, nil), time.UTC)
	compiler.Now = func() time.Time { return time.Date(2024, 1, 2, 15, 4, 0, 0, time.UTC) }

	return &Pipeline{
		Mailbox:    mb,
		Compiler:   compiler,
		Categories: categories,
		Deliverer:  d,
		MaxEmails:  5,
		Provider:   "fake",
		Backend:    "fake",
		NewRunID:   func() string { return "run-1" },
	}
}

func TestRun_FullReport(t *testing.T) {
	mb := &fakeMailbox{emails: []mailbox.Email{
		{ID: "1", Sender: "alerts@warhorn.net", Subject: "Game night"},
		{ID: "2", Sender: "partner@home.example", Subject: "Dinner?"},
		{ID: "3", Sender: "notify@nextdoor.com", Subject: "Lost cat"},
		{ID: "4", Sender: "random@foo.com", Subject: "Invoice"},
		{ID: "5", Sender: "more@warhorn.net", Subject: "Event"},
	}}
	gen := &fakeGenerator{}
	d := &fakeDeliverer{}

	err := newPipeline(t, mb, gen, d).Run(context.Background(), "PRIMARY")
	require.NoError(t, err)

	assert.Equal(t, 5, mb.asked)
	assert.Equal(t, 2, gen.calls)
	assert.Equal(t, []string{
		header,
		"1. (partner@home.example) reply today",
		"1. (random@foo.com) a summary",
		report.GroupedHeaderLine,
		"- (alerts@warhorn.net) - message count: 2",
		"- (notify@nextdoor.com) - message count: 1",
	}, d.lines)
	assert.Equal(t, 1, d.closed)
}

func TestRun_EmptyInbox(t *testing.T) {
	gen := &fakeGenerator{}
	d := &fakeDeliverer{}

	err := newPipeline(t, &fakeMailbox{}, gen, d).Run(context.Background(), "PRIMARY")
	require.NoError(t, err)

	assert.Equal(t, []string{header, report.NoEmailsLine}, d.lines)
	assert.Zero(t, gen.calls)
	assert.Equal(t, 1, d.closed)
}

func TestRun_CollaboratorFailures(t *testing.T) {
	providerErr := &llm.ProviderError{ModelID: "m", Err: errors.New("throttled")}
	oneEmail := []mailbox.Email{{ID: "1", Sender: "x@y.com"}}

	tests := []struct {
		name      string
		mailbox   *fakeMailbox
		generator *fakeGenerator
		deliverer *fakeDeliverer
		wantLines []string
		wantErr   bool
		wantFetch int
	}{
		{
			name:      "mailbox unavailable",
			mailbox:   &fakeMailbox{err: fmt.Errorf("%w: token expired", mailbox.ErrUnavailable)},
			generator: &fakeGenerator{},
			deliverer: &fakeDeliverer{},
			wantLines: []string{"Error: Mail service not available."},
			wantFetch: 1,
		},
		{
			name:      "generation unavailable",
			mailbox:   &fakeMailbox{emails: oneEmail},
			generator: &fakeGenerator{err: providerErr},
			deliverer: &fakeDeliverer{},
			wantLines: []string{report.GenerationUnavailableLine},
			wantFetch: 1,
		},
		{
			name:      "channel forbidden",
			mailbox:   &fakeMailbox{emails: oneEmail},
			generator: &fakeGenerator{},
			deliverer: &fakeDeliverer{checkErr: fmt.Errorf("discord: %w", delivery.ErrPermission)},
			wantFetch: 0,
		},
		{
			name:      "channel check fails unexpectedly",
			mailbox:   &fakeMailbox{emails: oneEmail},
			generator: &fakeGenerator{},
			deliverer: &fakeDeliverer{checkErr: errors.New("dns failure")},
			wantErr:   true,
		},
		{
			name:      "unexpected mailbox error",
			mailbox:   &fakeMailbox{err: errors.New("decode failure")},
			generator: &fakeGenerator{},
			deliverer: &fakeDeliverer{},
			wantErr:   true,
			wantFetch: 1,
		},
		{
			name:      "unexpected generation error",
			mailbox:   &fakeMailbox{emails: oneEmail},
			generator: &fakeGenerator{err: errors.New("bug")},
			deliverer: &fakeDeliverer{},
			wantErr:   true,
			wantFetch: 1,
		},
		{
			name:      "channel disappears mid report",
			mailbox:   &fakeMailbox{emails: oneEmail},
			generator: &fakeGenerator{},
			deliverer: &fakeDeliverer{sendErr: delivery.ErrNotFound, failAfter: 2},
			wantLines: []string{header, report.NoHighPriorityLine},
			wantFetch: 1,
		},
		{
			name:      "send fails unexpectedly",
			mailbox:   &fakeMailbox{emails: oneEmail},
			generator: &fakeGenerator{},
			deliverer: &fakeDeliverer{sendErr: errors.New("rate limited"), failAfter: 1},
			wantLines: []string{header},
			wantErr:   true,
			wantFetch: 1,
		},
		{
			name:      "placeholder cannot be delivered",
			mailbox:   &fakeMailbox{err: mailbox.ErrUnavailable},
			generator: &fakeGenerator{},
			deliverer: &fakeDeliverer{sendErr: delivery.ErrPermission},
			wantFetch: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newPipeline(t, tt.mailbox, tt.generator, tt.deliverer).Run(context.Background(), "PRIMARY")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantLines, tt.deliverer.lines)
			assert.Equal(t, tt.wantFetch, tt.mailbox.calls)
			assert.Equal(t, 1, tt.deliverer.closed, "delivery session must be closed")
		})
	}
}

func TestRun_CancelledIsNotAnOutage(t *testing.T) {
	oneEmail := []mailbox.Email{{ID: "1", Sender: "x@y.com"}}

	tests := []struct {
		name      string
		mailbox   *fakeMailbox
		generator *fakeGenerator
		deliverer *fakeDeliverer
	}{
		{
			name:      "generation interrupted",
			mailbox:   &fakeMailbox{emails: oneEmail},
			generator: &fakeGenerator{err: &llm.ProviderError{ModelID: "m", Err: context.Canceled}},
			deliverer: &fakeDeliverer{},
		},
		{
			name:      "fetch interrupted",
			mailbox:   &fakeMailbox{err: fmt.Errorf("%w: request aborted", mailbox.ErrUnavailable)},
			generator: &fakeGenerator{},
			deliverer: &fakeDeliverer{},
		},
		{
			name:      "check interrupted",
			mailbox:   &fakeMailbox{emails: oneEmail},
			generator: &fakeGenerator{},
			deliverer: &fakeDeliverer{checkErr: fmt.Errorf("discord: %w", delivery.ErrNotFound)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := newPipeline(t, tt.mailbox, tt.generator, tt.deliverer).Run(ctx, "PRIMARY")
			require.Error(t, err)
			assert.ErrorIs(t, err, context.Canceled)
			assert.Empty(t, tt.deliverer.lines, "no placeholder for a cancelled run")
			assert.Equal(t, 1, tt.deliverer.closed)
		})
	}
}

func TestRun_DefaultRunID(t *testing.T) {
	p := newPipeline(t, &fakeMailbox{}, &fakeGenerator{}, &fakeDeliverer{})
	p.NewRunID = nil

	assert.Len(t, p.newRunID(), 36)
	assert.NotEqual(t, p.newRunID(), p.newRunID())
}

func TestObserveGenerations(t *testing.T) {
	gen := &fakeGenerator{}
	p := newPipeline(t, &fakeMailbox{emails: []mailbox.Email{{ID: "1", Sender: "x@y.com"}}}, gen, &fakeDeliverer{})

	var observed int
	inner := ObserveGenerations(nil, llm.ModelClaudeHaiku)
	p.Compiler.Builder.Observe = func(ctx context.Context, task prompt.Task, err error, d time.Duration) {
		observed++
		inner(ctx, task, err, d)
	}

	require.NoError(t, p.Run(context.Background(), "PRIMARY"))
	assert.Equal(t, 1, observed)
}
