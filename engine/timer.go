package engine

// Timer converts wall-clock milliseconds into simulation ticks.
type Timer struct {
	speed          float64
	baseMsPerTick  float64
	baseTicksPerMs float64
	elapsed        float64
}

// NewTimer returns a running timer with the given base tick length.
func NewTimer(baseMsPerTick float64) *Timer {
	return &Timer{
		speed:          1,
		baseMsPerTick:  baseMsPerTick,
		baseTicksPerMs: 1 / baseMsPerTick,
	}
}

// NewTimerSeconds is NewTimer with the tick length given in seconds.
func NewTimerSeconds(baseSecondsPerTick float64) *Timer {
	return NewTimer(1000 * baseSecondsPerTick)
}

// Pause stops time; SetSpeed resumes it.
func (t *Timer) Pause() {
	t.speed = 0
}

func (t *Timer) SetSpeed(mult float64) {
	t.speed = mult
}

func (t *Timer) Speed() float64 {
	return t.speed
}

// MsPerTick is the current tick length, speed multiplier applied.
func (t *Timer) MsPerTick() float64 {
	return t.speed * t.baseMsPerTick
}

func (t *Timer) BaseMsPerTick() float64 {
	return t.baseMsPerTick
}

// MsToTicks converts ms at the current speed.
func (t *Timer) MsToTicks(ms float64) float64 {
	return t.speed * ms * t.baseTicksPerMs
}

// Elapsed returns the ticks recorded since the timer started.
func (t *Timer) Elapsed() float64 {
	return t.elapsed
}

func (t *Timer) RecordTicks(ticks float64) {
	t.elapsed += ticks
}

// RecordMs records ms worth of ticks and returns that tick count.
func (t *Timer) RecordMs(ms float64) float64 {
	ticks := t.MsToTicks(ms)
	t.RecordTicks(ticks)
	return ticks
}
