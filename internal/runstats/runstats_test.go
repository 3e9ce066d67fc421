package runstats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer(t *testing.T) {
	timer := Start("case")
	time.Sleep(time.Millisecond)
	d := timer.Stop()

	assert.Positive(t, d)
	assert.Equal(t, d, timer.Duration())
	assert.Equal(t, "case", timer.Name())
	assert.Contains(t, timer.String(), "case: ")
}

func TestTimerStringUnnamed(t *testing.T) {
	timer := Start("")
	timer.Stop()
	assert.NotEmpty(t, timer.String())
}

func TestReadMemoryStats(t *testing.T) {
	stats := ReadMemoryStats()
	assert.Positive(t, stats.Alloc)
	assert.Positive(t, stats.TotalAlloc)
	assert.Positive(t, stats.Sys)

	str := stats.String()
	assert.Contains(t, str, "Alloc:")
	assert.Contains(t, str, "KB")
}
