package streamable_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fwojciec/streamable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_WireProgression(t *testing.T) {
	t.Parallel()
	v := streamable.NewValue(0)

	s := v.Value()
	require.NotNil(t, s.Curr)
	assert.Equal(t, 0, *s.Curr)
	assert.Equal(t, streamable.StateMarker, s.Type, "boundary record carries the marker")
	require.NotNil(t, s.Next)

	require.NoError(t, v.Update(1))
	s1, err := s.Next.Await(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s1.Curr)
	assert.Equal(t, 1, *s1.Curr)
	assert.Empty(t, s1.Type, "interior links stay unmarked")
	require.NotNil(t, s1.Next)

	require.NoError(t, v.Update(2))
	s2, err := s1.Next.Await(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s2.Curr)
	assert.Equal(t, 2, *s2.Curr)
	require.NotNil(t, s2.Next)

	require.NoError(t, v.Done())
	s3, err := s2.Next.Await(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s3.Curr, "bare Done emits the empty state")
	assert.Nil(t, s3.Err)
	assert.Nil(t, s3.Next, "empty state is terminal")
}

func TestValue_UpdateNeverShortCircuits(t *testing.T) {
	t.Parallel()
	v := streamable.NewValue[string]()
	s := v.Value()

	require.NoError(t, v.Update("same"))
	s1, err := s.Next.Await(context.Background())
	require.NoError(t, err)

	require.NoError(t, v.Update("same"))
	s2, err := s1.Next.Await(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s2.Curr)
	assert.Equal(t, "same", *s2.Curr, "every update emits a link in the value flavor")
}

func TestValue_DoneWithValue(t *testing.T) {
	t.Parallel()
	v := streamable.NewValue[int]()
	s := v.Value()
	require.NoError(t, v.Done(9))

	s1, err := s.Next.Await(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s1.Curr)
	assert.Equal(t, 9, *s1.Curr)
	assert.Nil(t, s1.Next)
}

func TestValue_ErrorRejectsTailAndCloses(t *testing.T) {
	t.Parallel()
	v := streamable.NewValue[int]()
	s := v.Value()
	want := errors.New("x")
	require.NoError(t, v.Error(want))

	_, err := s.Next.Await(context.Background())
	assert.ErrorIs(t, err, want)

	assert.ErrorIs(t, v.Update(1), streamable.ErrStreamClosed)
	assert.ErrorIs(t, v.Done(), streamable.ErrStreamClosed)

	boundary := v.Value()
	assert.ErrorIs(t, boundary.Err, want, "boundary snapshot carries the error")
	assert.Nil(t, boundary.Next)
}

func TestValue_NoInitialOmitsCurr(t *testing.T) {
	t.Parallel()
	v := streamable.NewValue[int]()
	s := v.Value()
	assert.Nil(t, s.Curr, "no value communicated yet")
	assert.Equal(t, streamable.StateMarker, s.Type)
	require.NotNil(t, s.Next)
}

func TestState_MarshalCompact(t *testing.T) {
	t.Parallel()
	v := streamable.NewValue(3)
	b, err := json.Marshal(v.Value())
	require.NoError(t, err)
	assert.JSONEq(t, `{"curr":3,"type":"streamable.value"}`, string(b))
}

func TestState_MarshalEmpty(t *testing.T) {
	t.Parallel()
	var s streamable.State[int]
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(b))
}

func TestState_MarshalError(t *testing.T) {
	t.Parallel()
	s := streamable.State[int]{Err: errors.New("bad")}
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"bad"}`, string(b))
}
