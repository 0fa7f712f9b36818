package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slicehub/api/internal/models"
)

type fakePruner struct {
	pruned int64
	err    error
	calls  int
}

func (f *fakePruner) PruneOrphans(_ context.Context) (int64, error) {
	f.calls++
	return f.pruned, f.err
}

type fakeWarmer struct {
	err   error
	calls int
}

func (f *fakeWarmer) Menu(_ context.Context) ([]models.MenuItem, error) {
	f.calls++
	return nil, f.err
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(&fakePruner{}, &fakeWarmer{}, zerolog.Nop())
	require.NoError(t, s.Start())
	s.Stop()
}

func TestPruneSessions_RunsPruner(t *testing.T) {
	pruner := &fakePruner{pruned: 3}
	s := NewScheduler(pruner, &fakeWarmer{}, zerolog.Nop())

	s.pruneSessions()
	assert.Equal(t, 1, pruner.calls)
}

func TestPruneSessions_SurvivesError(t *testing.T) {
	pruner := &fakePruner{err: errors.New("db down")}
	s := NewScheduler(pruner, &fakeWarmer{}, zerolog.Nop())

	s.pruneSessions()
	assert.Equal(t, 1, pruner.calls)
}

func TestWarmMenu_RunsWarmer(t *testing.T) {
	warmer := &fakeWarmer{}
	s := NewScheduler(&fakePruner{}, warmer, zerolog.Nop())

	s.warmMenu()
	assert.Equal(t, 1, warmer.calls)

	warmer.err = errors.New("cache down")
	s.warmMenu()
	assert.Equal(t, 2, warmer.calls)
}
