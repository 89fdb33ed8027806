package helpers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	assert.Equal(t, "", Kind(nil))
	assert.Equal(t, "transport", Kind(NewTransportError("dial", errors.New("refused"))))
	assert.Equal(t, "decode", Kind(fmt.Errorf("prices: %w", NewDecodeError("bad json", nil))))
	assert.Equal(t, "row_parse", Kind(NewRowParseError(3, "-")))
	assert.Equal(t, "internal", Kind(errors.New("boom")))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("timeout")
	err := NewTransportError("request failed", cause)
	assert.Equal(t, "request failed: timeout", err.Error())
	assert.ErrorIs(t, err, cause)

	var rp *RowParseError
	require.ErrorAs(t, NewRowParseError(2, "x"), &rp)
	assert.Equal(t, 2, rp.Index)
	assert.Equal(t, "x", rp.Raw)
}

func TestRetryWithBackoff(t *testing.T) {
	var attempts, hooks int
	err := RetryWithBackoff(context.Background(), nil, "op", 2, time.Millisecond,
		func(int) { hooks++ },
		func() error {
			attempts++
			if attempts < 3 {
				return errors.New("again")
			}
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, hooks)
}

func TestRetryWithBackoffReturnsLastError(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), nil, "op", 1, time.Millisecond, nil, func() error {
		attempts++
		return fmt.Errorf("attempt %d", attempts)
	})
	assert.EqualError(t, err, "attempt 2")
}

func TestRetryWithBackoffStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := RetryWithBackoff(ctx, nil, "op", 5, time.Hour, nil, func() error {
		attempts++
		return errors.New("down")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestProxyManager(t *testing.T) {
	pm := NewProxyManager([]string{"10.0.0.1:8080", "", "socks5://10.0.0.2:1080"}, "", nil)
	require.True(t, pm.HasProxies())
	assert.Equal(t, defaultUserAgent, pm.GetUserAgent())

	p, err := pm.GetCurrentProxy()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:8080", p)

	pm.RotateProxy()
	p, _ = pm.GetCurrentProxy()
	assert.Equal(t, "socks5://10.0.0.2:1080", p)

	pm.RotateProxy()
	p, _ = pm.GetCurrentProxy()
	assert.Equal(t, "http://10.0.0.1:8080", p)
}

func TestProxyManagerEmpty(t *testing.T) {
	pm := NewProxyManager(nil, "agent", nil)
	assert.False(t, pm.HasProxies())
	p, err := pm.GetCurrentProxy()
	require.NoError(t, err)
	assert.Empty(t, p)
	pm.RotateProxy()
	assert.Equal(t, "agent", pm.GetUserAgent())
}
