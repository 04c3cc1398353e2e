package service

import (
	"testing"
	"time"
)

type accrualHarness struct {
	engine  *AccrualEngine
	sched   *fakeScheduler
	emitted []float64
}

func newAccrualHarness(cfg AccrualConfig) *accrualHarness {
	h := &accrualHarness{sched: newFakeScheduler()}
	cfg.Now = h.sched.Now
	h.engine = NewAccrualEngine(cfg, h.sched, func(units float64) {
		h.emitted = append(h.emitted, units)
	})
	return h
}

func (h *accrualHarness) totalEmitted() float64 {
	var total float64
	for _, u := range h.emitted {
		total += u
	}
	return total
}

func TestAccrual_BufferDelaysEarning(t *testing.T) {
	h := newAccrualHarness(AccrualConfig{})
	h.engine.Start()

	// Within the buffer window nothing accrues.
	h.sched.Advance(700 * time.Millisecond)
	if got := h.engine.Pending(); got != 0 {
		t.Errorf("pending during buffer = %.3f, want 0", got)
	}

	// Past the buffer, accrual begins.
	h.sched.Advance(600 * time.Millisecond)
	if got := h.engine.Pending(); got <= 0 {
		t.Errorf("pending after buffer = %.3f, want > 0", got)
	}
}

func TestAccrual_ScrollPastEarnsNothing(t *testing.T) {
	h := newAccrualHarness(AccrualConfig{})
	h.engine.Start()

	// Swiped away before the buffer elapsed.
	h.sched.Advance(400 * time.Millisecond)
	h.engine.Pause()

	h.sched.Advance(10 * time.Second)
	if got := h.engine.Pending(); got != 0 {
		t.Errorf("pending after scroll-past = %.3f, want 0", got)
	}
	if len(h.emitted) != 0 {
		t.Errorf("emissions after scroll-past = %v, want none", h.emitted)
	}
}

func TestAccrual_WholeUnitEmission(t *testing.T) {
	h := newAccrualHarness(AccrualConfig{})
	h.engine.Start()

	// Buffer + 2.1s at 0.5 units/s, 1x speed: just past one whole unit.
	h.sched.Advance(DefaultBufferDelay + 2100*time.Millisecond)

	if got := h.totalEmitted(); got != 1 {
		t.Errorf("emitted = %.3f, want exactly 1 whole unit", got)
	}
	if got := h.engine.Pending(); got >= 1 {
		t.Errorf("pending = %.3f, want fractional remainder below 1", got)
	}
}

func TestAccrual_FractionRetainedAcrossTicks(t *testing.T) {
	h := newAccrualHarness(AccrualConfig{})
	h.engine.Start()

	// Buffer + 1s: half a unit, nothing emitted yet.
	h.sched.Advance(DefaultBufferDelay + time.Second)
	if len(h.emitted) != 0 {
		t.Fatalf("emissions below threshold = %v, want none", h.emitted)
	}
	if got := h.engine.Pending(); !almostEqual(got, 0.5, 0.01) {
		t.Errorf("pending = %.3f, want ~0.5", got)
	}
}

func TestAccrual_StartIsIdempotent(t *testing.T) {
	h := newAccrualHarness(AccrualConfig{})
	h.engine.Start()
	h.engine.Start()
	h.engine.Start()

	h.sched.Advance(DefaultBufferDelay + 2100*time.Millisecond)
	if got := h.totalEmitted(); got != 1 {
		t.Errorf("emitted after repeated Start = %.3f, want 1", got)
	}
}

func TestAccrual_PausePreservesFraction(t *testing.T) {
	h := newAccrualHarness(AccrualConfig{})
	h.engine.Start()
	h.sched.Advance(DefaultBufferDelay + time.Second)

	h.engine.Pause()
	pending := h.engine.Pending()
	if !almostEqual(pending, 0.5, 0.01) {
		t.Fatalf("pending at pause = %.3f, want ~0.5", pending)
	}

	// Time passing while paused accrues nothing.
	h.sched.Advance(time.Minute)
	if got := h.engine.Pending(); got != pending {
		t.Errorf("pending while paused drifted: %.3f → %.3f", pending, got)
	}

	// Resuming re-buffers, then continues from the preserved fraction.
	h.engine.Start()
	h.sched.Advance(DefaultBufferDelay + 1200*time.Millisecond)
	if got := h.totalEmitted(); got != 1 {
		t.Errorf("emitted after resume = %.3f, want 1", got)
	}
}

func TestAccrual_StopDiscardsProgress(t *testing.T) {
	h := newAccrualHarness(AccrualConfig{})
	h.engine.Start()
	h.sched.Advance(DefaultBufferDelay + time.Second)

	h.engine.Stop()
	if got := h.engine.Pending(); got != 0 {
		t.Errorf("pending after Stop = %.3f, want 0", got)
	}

	h.sched.Advance(time.Minute)
	if len(h.emitted) != 0 {
		t.Errorf("emissions after Stop = %v, want none", h.emitted)
	}
}

func TestAccrual_FlushEmitsFractionalRemainder(t *testing.T) {
	h := newAccrualHarness(AccrualConfig{})
	h.engine.Start()
	h.sched.Advance(DefaultBufferDelay + 1400*time.Millisecond)

	got := h.engine.Flush()
	if !almostEqual(got, 0.7, 0.01) {
		t.Errorf("Flush() = %.3f, want ~0.7", got)
	}
	if !almostEqual(h.totalEmitted(), 0.7, 0.01) {
		t.Errorf("emitted via callback = %.3f, want ~0.7", h.totalEmitted())
	}
	if h.engine.Pending() != 0 {
		t.Errorf("pending after flush = %.3f, want 0", h.engine.Pending())
	}
}

func TestAccrual_FlushEmptyIsZero(t *testing.T) {
	h := newAccrualHarness(AccrualConfig{})
	if got := h.engine.Flush(); got != 0 {
		t.Errorf("Flush() on idle engine = %.3f, want 0", got)
	}
	if len(h.emitted) != 0 {
		t.Errorf("empty flush emitted %v, want nothing", h.emitted)
	}
}

func TestAccrual_SpeedModifierLookup(t *testing.T) {
	h := newAccrualHarness(AccrualConfig{})

	tests := []struct {
		name  string
		speed float64
		want  float64
	}{
		{"exact 1x", 1.0, 1.00},
		{"exact 0.75x", 0.75, 1.05},
		{"exact 1.5x", 1.5, 0.80},
		{"nearest below", 0.8, 1.05},
		{"nearest above", 1.1, 1.00},
		{"above table", 2.0, 0.80},
		{"below table", 0.25, 1.05},
		{"tie keeps lower speed", 0.875, 1.05},
		{"tie keeps lower speed mid-table", 1.125, 1.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.engine.modifierFor(tt.speed); got != tt.want {
				t.Errorf("modifierFor(%.3f) = %.2f, want %.2f", tt.speed, got, tt.want)
			}
		})
	}
}

func TestAccrual_SpeedAffectsRate(t *testing.T) {
	h := newAccrualHarness(AccrualConfig{})
	h.engine.SetSpeed(1.5)
	h.engine.Start()

	// Buffer + 1s at 0.5 units/s × 0.80 = 0.4 units.
	h.sched.Advance(DefaultBufferDelay + time.Second)
	if got := h.engine.Pending(); !almostEqual(got, 0.4, 0.01) {
		t.Errorf("pending at 1.5x = %.3f, want ~0.4", got)
	}
}

func TestAccrual_CloseCancelsTimers(t *testing.T) {
	h := newAccrualHarness(AccrualConfig{})
	h.engine.Start()
	h.sched.Advance(DefaultBufferDelay + 500*time.Millisecond)

	h.engine.Close()
	h.sched.Advance(time.Hour)

	if len(h.emitted) != 0 {
		t.Errorf("closed engine still emitted %v", h.emitted)
	}

	// Closing twice is fine.
	h.engine.Close()
}

func TestAccrual_CustomConfig(t *testing.T) {
	h := newAccrualHarness(AccrualConfig{
		BufferDelay: 200 * time.Millisecond,
		TickPeriod:  50 * time.Millisecond,
		BaseRate:    2,
	})
	h.engine.Start()

	// 200ms buffer + 1s at 2 units/s: 2 whole units emitted.
	h.sched.Advance(200*time.Millisecond + 1050*time.Millisecond)
	if got := h.totalEmitted(); got != 2 {
		t.Errorf("emitted = %.3f, want 2", got)
	}
}
