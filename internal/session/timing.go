package session

import (
	"time"

	"fileconv/internal/config"
)

// Timing controls the cosmetic progress indicator and the display delays.
type Timing struct {
	Interval     time.Duration
	Step         int
	Cap          int
	SuccessDelay time.Duration
	FailureDelay time.Duration
}

// DefaultTiming advances 5% every 200ms up to 90%, shows success for one
// second and failures for two.
func DefaultTiming() Timing {
	return Timing{
		Interval:     200 * time.Millisecond,
		Step:         5,
		Cap:          90,
		SuccessDelay: time.Second,
		FailureDelay: 2 * time.Second,
	}
}

// TimingFromConfig reads the [conversion] section.
func TimingFromConfig(cfg *config.Config) Timing {
	if cfg == nil {
		return DefaultTiming()
	}
	return Timing{
		Interval:     cfg.ProgressInterval(),
		Step:         cfg.Conversion.ProgressStep,
		Cap:          cfg.Conversion.ProgressCap,
		SuccessDelay: cfg.SuccessDelay(),
		FailureDelay: cfg.FailureDelay(),
	}.normalized()
}

func (t Timing) normalized() Timing {
	def := DefaultTiming()
	if t.Interval <= 0 {
		t.Interval = def.Interval
	}
	if t.Cap <= 0 || t.Cap >= 100 {
		t.Cap = def.Cap
	}
	if t.Step <= 0 {
		t.Step = def.Step
	}
	if t.Step > t.Cap {
		t.Step = t.Cap
	}
	if t.SuccessDelay < 0 {
		t.SuccessDelay = 0
	}
	if t.FailureDelay < 0 {
		t.FailureDelay = 0
	}
	return t
}
