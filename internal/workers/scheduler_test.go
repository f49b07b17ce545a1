package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/pkg/errors"
)

type countingWorker struct {
	*BaseWorker
	runs atomic.Int64
	err  error
}

func newCountingWorker(name string, interval time.Duration, enabled bool) *countingWorker {
	return &countingWorker{BaseWorker: NewBaseWorker(name, interval, enabled)}
}

func (w *countingWorker) Run(ctx context.Context) error {
	w.runs.Add(1)
	start := time.Now()
	if w.err != nil {
		w.RecordError(w.err, time.Since(start))
		return w.err
	}
	w.RecordRun(time.Since(start))
	return nil
}

func TestScheduler_RunsWorkersOnInterval(t *testing.T) {
	s := NewScheduler()
	w := newCountingWorker("ticker", 20*time.Millisecond, true)
	s.Register(w)

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(70 * time.Millisecond)
	require.NoError(t, s.Stop())

	// One immediate run plus at least two ticks
	assert.GreaterOrEqual(t, w.runs.Load(), int64(3))
}

func TestScheduler_SkipsDisabledWorkers(t *testing.T) {
	s := NewScheduler()
	enabled := newCountingWorker("on", 10*time.Millisecond, true)
	disabled := newCountingWorker("off", 10*time.Millisecond, false)
	s.Register(enabled)
	s.Register(disabled)

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, s.Stop())

	assert.Positive(t, enabled.runs.Load())
	assert.Zero(t, disabled.runs.Load())
}

func TestScheduler_DoubleStartFails(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())
}

func TestScheduler_StopWithoutStartFails(t *testing.T) {
	assert.Error(t, NewScheduler().Stop())
}

func TestScheduler_WorkerErrorsDoNotStopTheLoop(t *testing.T) {
	s := NewScheduler()
	w := newCountingWorker("flaky", 15*time.Millisecond, true)
	w.err = errors.ErrUnavailable
	s.Register(w)

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Stop())

	assert.GreaterOrEqual(t, w.runs.Load(), int64(2))
	health := w.Health()
	assert.Equal(t, health.RunCount, health.ErrorCount)
	assert.ErrorIs(t, health.LastError, errors.ErrUnavailable)
}

func TestBaseWorker_Health(t *testing.T) {
	w := NewBaseWorker("probe", time.Minute, true)
	w.RecordRun(10 * time.Millisecond)
	w.RecordRun(30 * time.Millisecond)
	w.RecordError(errors.ErrTimeout, 20*time.Millisecond)

	h := w.Health()
	assert.Equal(t, int64(3), h.RunCount)
	assert.Equal(t, int64(1), h.ErrorCount)
	assert.Equal(t, 20*time.Millisecond, h.AvgDuration)
	assert.ErrorIs(t, h.LastError, errors.ErrTimeout)
	assert.True(t, h.Enabled)

	w.SetEnabled(false)
	assert.False(t, w.Enabled())
}
