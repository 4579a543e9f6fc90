package common

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer(t *testing.T) {
	timer := NewNamedTimer("ocr")
	assert.Equal(t, "ocr", timer.Name())

	time.Sleep(10 * time.Millisecond)

	duration := timer.Stop()
	assert.GreaterOrEqual(t, duration, 10*time.Millisecond)
	assert.Equal(t, duration, timer.Duration())

	str := timer.String()
	assert.Contains(t, str, "ocr")
	assert.Contains(t, str, "ms")
}

func TestUnnamedTimer(t *testing.T) {
	timer := NewTimer()
	assert.Empty(t, timer.Name())
	assert.Zero(t, timer.Duration())
	timer.Stop()
	assert.NotZero(t, timer.Duration())
}

func TestStagesRecordOrder(t *testing.T) {
	s := NewStages()
	s.Record("locate", 2*time.Millisecond)
	s.Record("ocr", 30*time.Millisecond)
	s.Record("resolve", time.Millisecond)

	stages := s.List()
	require.Len(t, stages, 3)
	assert.Equal(t, "locate", stages[0].Name)
	assert.Equal(t, "ocr", stages[1].Name)
	assert.Equal(t, "resolve", stages[2].Name)

	ms := s.Milliseconds()
	assert.Equal(t, int64(30), ms["ocr"])
	assert.Contains(t, s.String(), "ocr: 30ms")
}

func TestStagesTime(t *testing.T) {
	s := NewStages()
	done := s.Time("sleep")
	time.Sleep(5 * time.Millisecond)
	done()

	stages := s.List()
	require.Len(t, stages, 1)
	assert.Equal(t, "sleep", stages[0].Name)
	assert.GreaterOrEqual(t, stages[0].Duration, 5*time.Millisecond)
}

func TestStagesConcurrentRecording(t *testing.T) {
	s := NewStages()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Record("region", time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Len(t, s.List(), 8)
	assert.Equal(t, int64(8), s.Milliseconds()["region"])
}
