package scan

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitDone(t *testing.T, m *Machine) {
	t.Helper()
	select {
	case <-m.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("scan goroutine did not exit")
	}
}

func TestScanCompletesOnce(t *testing.T) {
	var calls atomic.Int32
	m := NewMachine(Config{Tick: time.Millisecond, Step: 5, Settle: time.Millisecond}, func() {
		calls.Add(1)
	})
	assert.Equal(t, Status{Phase: Idle}, m.Status())

	require.NoError(t, m.Start())
	waitDone(t, m)

	assert.Equal(t, Status{Phase: Done, Progress: 100}, m.Status())
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, m.Cancel(), "a finished scan has nothing to cancel")
}

func TestScanProgressInSteps(t *testing.T) {
	m := NewMachine(Config{Tick: time.Millisecond, Step: 5, Settle: time.Hour}, nil)
	require.NoError(t, m.Start())

	require.Eventually(t, func() bool {
		s := m.Status()
		assert.Zero(t, s.Progress%5, "progress %d", s.Progress)
		assert.LessOrEqual(t, s.Progress, 100)
		return s.Progress == 100
	}, 2*time.Second, 100*time.Microsecond)

	// settling: full progress but not yet done
	assert.Equal(t, Scanning, m.Status().Phase)

	require.True(t, m.Cancel())
	waitDone(t, m)
	assert.Equal(t, Status{Phase: Idle}, m.Status())
}

func TestStartWhileScanning(t *testing.T) {
	m := NewMachine(Config{Tick: time.Hour, Step: 5, Settle: time.Hour}, nil)
	require.NoError(t, m.Start())
	assert.ErrorIs(t, m.Start(), ErrAlreadyStarted)

	m.Cancel()
	waitDone(t, m)
}

func TestCancelPreventsCompletion(t *testing.T) {
	var calls atomic.Int32
	m := NewMachine(Config{Tick: time.Millisecond, Step: 50, Settle: 20 * time.Millisecond}, func() {
		calls.Add(1)
	})
	require.NoError(t, m.Start())
	require.Eventually(t, func() bool { return m.Status().Progress == 100 }, time.Second, time.Millisecond)

	require.True(t, m.Cancel())
	waitDone(t, m)

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, calls.Load())
	assert.Equal(t, Idle, m.Status().Phase)
}

func TestRestartAfterCancel(t *testing.T) {
	var calls atomic.Int32
	m := NewMachine(Config{Tick: time.Millisecond, Step: 25, Settle: time.Millisecond}, func() {
		calls.Add(1)
	})
	require.NoError(t, m.Start())
	m.Cancel()
	require.NoError(t, m.Start())
	waitDone(t, m)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, Done, m.Status().Phase)
}
