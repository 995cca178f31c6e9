package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingJob struct {
	started atomic.Int32
}

func (j *countingJob) Start(ctx context.Context) {
	j.started.Add(1)
	<-ctx.Done()
}

func TestManagerRunsJobsUntilCancel(t *testing.T) {
	m := New()
	j1 := &countingJob{}
	j2 := &countingJob{}
	m.Register(j1)
	m.Register(j2)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), j1.started.Load())
	assert.Equal(t, int32(1), j2.started.Load())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("manager did not stop after cancel")
	}
}
