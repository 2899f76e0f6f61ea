package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShutdownManager(t *testing.T) {
	tests := []struct {
		name            string
		timeout         time.Duration
		expectedTimeout time.Duration
	}{
		{name: "custom timeout", timeout: 10 * time.Second, expectedTimeout: 10 * time.Second},
		{name: "zero timeout uses default", timeout: 0, expectedTimeout: 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewShutdownManager(nil, nil, tt.timeout)
			require.NotNil(t, sm)
			assert.NotNil(t, sm.logger)
			assert.Equal(t, tt.expectedTimeout, sm.shutdownTimeout)
			assert.Empty(t, sm.shutdownFuncs)
		})
	}
}

func TestShutdownManager_RunsFuncs(t *testing.T) {
	sm := NewShutdownManager(nil, nil, time.Second)

	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		sm.RegisterShutdownFunc(func(context.Context) error {
			calls.Add(1)
			return nil
		})
	}

	require.NoError(t, sm.Shutdown())
	assert.Equal(t, int32(3), calls.Load())
}

func TestShutdownManager_CollectsErrors(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	sm := NewShutdownManager(logger, nil, time.Second)

	errFlush := errors.New("flush failed")
	sm.RegisterShutdownFunc(func(context.Context) error { return errFlush })
	sm.RegisterShutdownFunc(func(context.Context) error { return nil })

	err := sm.Shutdown()
	require.Error(t, err)
	assert.ErrorIs(t, err, errFlush)
	assert.Contains(t, err.Error(), "1 errors")

	var failed bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Shutdown function failed" {
			failed = true
		}
	}
	assert.True(t, failed)
}

func TestShutdownManager_Timeout(t *testing.T) {
	sm := NewShutdownManager(nil, nil, 50*time.Millisecond)

	release := make(chan struct{})
	defer close(release)
	sm.RegisterShutdownFunc(func(context.Context) error {
		<-release
		return nil
	})

	err := sm.Shutdown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestShutdownManager_StopsServer(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := &http.Server{Handler: http.NotFoundHandler()}
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(listener) }()

	sm := NewShutdownManager(nil, server, time.Second)
	require.NoError(t, sm.Shutdown())

	select {
	case err := <-serveErr:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}

func TestShutdownManager_WaitForShutdown(t *testing.T) {
	sm := NewShutdownManager(nil, nil, time.Second)

	var ran atomic.Bool
	sm.RegisterShutdownFunc(func(context.Context) error {
		ran.Store(true)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sm.WaitForShutdown(ctx) }()

	assert.False(t, ran.Load())
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
		assert.True(t, ran.Load())
	case <-time.After(time.Second):
		t.Fatal("WaitForShutdown did not return")
	}
}
