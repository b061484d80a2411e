package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	ctx := context.Background()

	require.NoError(t, c.Check(ctx))
	require.NoError(t, c.Send(ctx, "# PRIMARY Email Report"))
	require.NoError(t, c.Send(ctx, "*No emails to report.*"))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.Equal(t, "# PRIMARY Email Report\n*No emails to report.*\n", buf.String())
	assert.ErrorIs(t, c.Send(ctx, "late"), ErrNotFound)
	assert.ErrorIs(t, c.Check(ctx), ErrNotFound)
}

func TestUnreachable(t *testing.T) {
	assert.True(t, Unreachable(fmt.Errorf("discord: %w", ErrPermission)))
	assert.True(t, Unreachable(fmt.Errorf("signal: %w", ErrNotFound)))
	assert.False(t, Unreachable(errors.New("boom")))
	assert.False(t, Unreachable(nil))
}
