package engine

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestTimer(t *testing.T) {
	tm := NewTimer(10)
	assert.Equal(t, tm.MsPerTick(), 10.0)
	assert.Equal(t, tm.RecordMs(25), 2.5)

	tm.SetSpeed(2)
	assert.Equal(t, tm.MsPerTick(), 20.0)
	assert.Equal(t, tm.RecordMs(10), 2.0)
	assert.Equal(t, tm.Elapsed(), 4.5)

	tm.Pause()
	assert.Equal(t, tm.RecordMs(1000), 0.0)
	assert.Equal(t, tm.Elapsed(), 4.5)
	assert.Equal(t, tm.BaseMsPerTick(), 10.0)

	tm.RecordTicks(0.5)
	assert.Equal(t, tm.Elapsed(), 5.0)
}

func TestNewTimerSeconds(t *testing.T) {
	tm := NewTimerSeconds(0.5)
	assert.Equal(t, tm.BaseMsPerTick(), 500.0)
	assert.Equal(t, tm.MsToTicks(250), 0.5)
}
