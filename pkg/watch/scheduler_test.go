package watch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/envfile/pkg/envfile"
)

func TestNewScheduler_InvalidSpec(t *testing.T) {
	reloader := NewReloader(envfile.NewLoader(envfile.NewStore()), nil, nil, nil)

	_, err := NewScheduler(reloader, "every tuesday", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid reload schedule")
}

func TestScheduler_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "KEY=old\n")

	store := envfile.NewStore()
	reloader := NewReloader(envfile.NewLoader(store), []string{path}, nil, nil)
	require.NoError(t, reloader.Reload(TriggerStartup))

	scheduler, err := NewScheduler(reloader, "@every 1s", nil)
	require.NoError(t, err)

	writeFile(t, dir, ".env", "KEY=scheduled\n")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Run(ctx) }()

	assert.Eventually(t, func() bool {
		v, _ := store.Get("KEY")
		return v == "scheduled"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
