package mock_test

import (
	"context"
	"io"
	"testing"

	"github.com/fwojciec/streamable"
	"github.com/fwojciec/streamable/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScripted(t *testing.T) {
	t.Parallel()

	s := mock.Scripted([]streamable.Event{
		streamable.EventTextDelta{Delta: "a"},
		streamable.EventTextDelta{Delta: "b"},
	}, io.EOF)

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, streamable.EventTextDelta{Delta: "a"}, evt)

	evt, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, streamable.EventTextDelta{Delta: "b"}, evt)

	_, err = s.Next()
	assert.Equal(t, io.EOF, err)

	assert.NoError(t, s.Close(), "Close is nil-safe")
}

func TestProviderDelegates(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{
		StreamFn: func(_ context.Context, req streamable.Request) (streamable.CompletionStream, error) {
			assert.Equal(t, "m1", req.Model)
			return mock.Scripted(nil, io.EOF), nil
		},
	}
	s, err := p.Stream(context.Background(), streamable.Request{Model: "m1"})
	require.NoError(t, err)
	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
}

func TestSteps(t *testing.T) {
	t.Parallel()

	g := mock.Steps("done", "one", "two")
	ctx := context.Background()

	node, done, err := g.Next(ctx)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, "one", node)

	node, done, err = g.Next(ctx)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, "two", node)

	node, done, err = g.Next(ctx)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "done", node)
}
