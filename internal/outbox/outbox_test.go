package outbox

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestOutbox_RunsTask(t *testing.T) {
	ob := New(testLogger(), 8, 1)
	ob.Start()

	var ran atomic.Int32
	ok := ob.Enqueue(Task{
		Kind: "test",
		Ref:  "1",
		Run: func() error {
			ran.Add(1)
			return nil
		},
	})
	assert.True(t, ok)

	ob.Stop()
	assert.Equal(t, int32(1), ran.Load())
}

func TestOutbox_RetriesThenSucceeds(t *testing.T) {
	ob := New(testLogger(), 8, 1)
	ob.retryDelay = time.Millisecond
	ob.Start()

	var attempts atomic.Int32
	ob.Enqueue(Task{
		Kind: "flaky",
		Ref:  "2",
		Run: func() error {
			if attempts.Add(1) < 3 {
				return errors.New("transient")
			}
			return nil
		},
	})

	ob.Stop()
	assert.Equal(t, int32(3), attempts.Load())
}

func TestOutbox_GivesUpAfterMaxRetries(t *testing.T) {
	ob := New(testLogger(), 8, 1)
	ob.retryDelay = time.Millisecond
	ob.Start()

	var attempts atomic.Int32
	ob.Enqueue(Task{
		Kind: "broken",
		Ref:  "3",
		Run: func() error {
			attempts.Add(1)
			return errors.New("permanent")
		},
	})

	ob.Stop()
	assert.Equal(t, int32(3), attempts.Load())
}

func TestOutbox_DropsWhenFull(t *testing.T) {
	// No workers started, so the queue never drains
	ob := New(testLogger(), 1, 1)

	first := ob.Enqueue(Task{Kind: "a", Run: func() error { return nil }})
	second := ob.Enqueue(Task{Kind: "b", Run: func() error { return nil }})

	assert.True(t, first)
	assert.False(t, second)
}

func TestOutbox_StopIsIdempotent(t *testing.T) {
	ob := New(testLogger(), 8, 2)
	ob.Start()
	ob.Stop()
	assert.NotPanics(t, func() { ob.Stop() })
}

func TestOutbox_EnqueueAfterStop(t *testing.T) {
	ob := New(testLogger(), 8, 1)
	ob.Start()
	ob.Stop()

	var ok bool
	assert.NotPanics(t, func() {
		ok = ob.Enqueue(Task{Kind: "late", Ref: "9", Run: func() error { return nil }})
	})
	assert.False(t, ok)
}
