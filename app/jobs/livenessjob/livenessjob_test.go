package livenessjob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) MarkOfflineSince(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func immediateTrigger(callCount int, done chan struct{}) TriggerFunc {
	return func(ctx context.Context, fn func() error) {
		for i := 0; i < callCount; i++ {
			fn()
		}
		close(done)
		<-ctx.Done()
	}
}

// TestNew_Defaults - New() fills in trigger and staleness
func TestNew_Defaults(t *testing.T) {
	job := New()

	assert.NotNil(t, job.config.Trigger)
	assert.Equal(t, DefaultStaleness, job.config.Staleness)
}

// TestNewWithConfig_KeepsCustomStaleness - explicit staleness wins
func TestNewWithConfig_KeepsCustomStaleness(t *testing.T) {
	job := NewWithConfig(LivenessJobConfig{
		Staleness: 30 * time.Second,
	})

	assert.Equal(t, 30*time.Second, job.config.Staleness)
}

// TestRegister_SweepsWithCutoff - cutoff lags now by the staleness window
func TestRegister_SweepsWithCutoff(t *testing.T) {
	store := new(MockSweeper)
	store.On("MarkOfflineSince", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(2), nil)

	done := make(chan struct{})
	job := NewWithConfig(LivenessJobConfig{
		Trigger:   immediateTrigger(1, done),
		Staleness: time.Minute,
	})

	before := time.Now().UTC()
	cancel := job.Register(context.Background(), store)
	<-done
	cancel()
	job.Shutdown()

	store.AssertNumberOfCalls(t, "MarkOfflineSince", 1)
	cutoff := store.Calls[0].Arguments.Get(1).(time.Time)
	lag := before.Sub(cutoff)
	assert.GreaterOrEqual(t, lag, 59*time.Second)
	assert.Less(t, lag, 2*time.Minute)
}

// TestRegister_ContinuesOnError - sweep failures do not stop the job
func TestRegister_ContinuesOnError(t *testing.T) {
	store := new(MockSweeper)
	store.On("MarkOfflineSince", mock.Anything, mock.Anything).Return(int64(0), errors.New("database is locked"))

	done := make(chan struct{})
	job := NewWithConfig(LivenessJobConfig{
		Trigger: immediateTrigger(3, done),
	})

	cancel := job.Register(context.Background(), store)
	<-done
	cancel()
	job.Shutdown()

	store.AssertNumberOfCalls(t, "MarkOfflineSince", 3)
}

// TestShutdown_WaitsForCompletion - Shutdown() blocks until the goroutine exits
func TestShutdown_WaitsForCompletion(t *testing.T) {
	var finished bool

	job := NewWithConfig(LivenessJobConfig{
		Trigger: func(ctx context.Context, fn func() error) {
			<-ctx.Done()
			time.Sleep(20 * time.Millisecond)
			finished = true
		},
	})

	job.Register(context.Background(), new(MockSweeper))
	job.Shutdown()

	assert.True(t, finished)
}
