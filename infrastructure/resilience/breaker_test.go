package resilience

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgerrors "grapheditor/pkg/errors"
)

var errRemote = errors.New("remote failure")

func TestBreaker_OpensAfterFailures(t *testing.T) {
	b := NewBreaker(DefaultBreakerConfig("store"), nil, zap.NewNop())

	for i := 0; i < 5; i++ {
		_, err := Call(b, func() (int, error) { return 0, errRemote })
		require.ErrorIs(t, err, errRemote)
	}

	assert.Equal(t, "open", b.State())
	_, err := Call(b, func() (int, error) { return 1, nil })
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
}

func TestBreaker_IgnoredErrorsDoNotTrip(t *testing.T) {
	notFound := func(err error) bool { return pkgerrors.IsNotFound(err) }
	b := NewBreaker(DefaultBreakerConfig("store"), notFound, zap.NewNop())

	for i := 0; i < 10; i++ {
		_, err := Call(b, func() (string, error) { return "", pkgerrors.NewNotFoundError("doc") })
		require.True(t, pkgerrors.IsNotFound(err))
	}

	assert.Equal(t, "closed", b.State())
	got, err := Call(b, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}
