package shifter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SoNdA11/argus-shift/internal/gearing"
	"github.com/SoNdA11/argus-shift/internal/protocol"
)

type fakeSink struct {
	mu   sync.Mutex
	msgs []protocol.ControlMessage
	err  error
}

func (f *fakeSink) Write(m protocol.ControlMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

func (f *fakeSink) last() protocol.ControlMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.msgs[len(f.msgs)-1]
}

func gradientModel() gearing.Model {
	return gearing.GradientModel{MinGear: 1, MaxGear: 24, PerGear: 0.01}
}

func start(t *testing.T, model gearing.Model, sink Sink, cfg Config) *Shifter {
	t.Helper()
	s, err := New(model, sink, cfg)
	if err != nil {
		t.Fatalf("expected shifter to build: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Run(ctx)
	return s
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(gradientModel(), &fakeSink{}, Config{MinGear: 5, MaxGear: 1, InitialGear: 3}); err == nil {
		t.Fatalf("expected error for inverted gear range")
	}
	_, err := New(gradientModel(), &fakeSink{}, Config{MinGear: 1, MaxGear: 24, InitialGear: 30})
	if !errors.Is(err, ErrGearOutOfRange) {
		t.Fatalf("expected ErrGearOutOfRange for initial gear, got %v", err)
	}
}

func TestShiftUpDispatchesParameter(t *testing.T) {
	sink := &fakeSink{}
	s := start(t, gradientModel(), sink, Config{MinGear: 1, MaxGear: 24, InitialGear: 12})

	res, err := s.ShiftUp(context.Background())
	if err != nil {
		t.Fatalf("expected shift to succeed: %v", err)
	}
	if !res.Applied || res.Gear != 13 {
		t.Fatalf("expected applied shift to gear 13, got %+v", res)
	}
	if s.CurrentGear() != 13 {
		t.Fatalf("expected current gear 13, got %d", s.CurrentGear())
	}
	if sink.count() != 1 || sink.last().Opcode != protocol.OpCodeSetSimulation {
		t.Fatalf("expected one simulation message, got %d messages", sink.count())
	}
}

func TestGradientScenario(t *testing.T) {
	sink := &fakeSink{}
	s := start(t, gradientModel(), sink, Config{MinGear: 1, MaxGear: 24, InitialGear: 12})
	ctx := context.Background()

	grade := func(r Result) float64 { return r.Parameter.(gearing.Simulation).Grade }

	res, _ := s.ShiftDown(ctx)
	if res.Gear != 11 || grade(res) != 0.01 {
		t.Fatalf("expected gear 11 at grade 0.01, got gear %d grade %v", res.Gear, grade(res))
	}

	for i := 0; i < 9; i++ {
		res, _ = s.ShiftDown(ctx)
	}
	if res.Gear != 2 || grade(res) != 0.10 {
		t.Fatalf("expected gear 2 at grade 0.10, got gear %d grade %v", res.Gear, grade(res))
	}

	// one more shift hits the grade ceiling, not 0.11
	res, _ = s.ShiftDown(ctx)
	if res.Gear != 1 || grade(res) != 0.10 {
		t.Fatalf("expected gear 1 clamped at grade 0.10, got gear %d grade %v", res.Gear, grade(res))
	}
}

func TestShiftUpClampsAtMaxGear(t *testing.T) {
	sink := &fakeSink{}
	s := start(t, gradientModel(), sink, Config{MinGear: 1, MaxGear: 24, InitialGear: 22})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := s.ShiftUp(ctx)
		if err != nil {
			t.Fatalf("shift %d: expected no error, got %v", i, err)
		}
		if res.Gear > 24 {
			t.Fatalf("shift %d: gear %d exceeded max", i, res.Gear)
		}
		if i >= 2 && res.Applied {
			t.Fatalf("shift %d: expected boundary no-op at max gear", i)
		}
	}
	if s.CurrentGear() != 24 {
		t.Fatalf("expected to stay at gear 24, got %d", s.CurrentGear())
	}
	if sink.count() != 2 {
		t.Fatalf("expected 2 dispatches (boundary shifts must not write), got %d", sink.count())
	}
}

func TestSetGearOutOfRange(t *testing.T) {
	sink := &fakeSink{}
	s := start(t, gradientModel(), sink, Config{MinGear: 1, MaxGear: 24, InitialGear: 12})
	ctx := context.Background()

	for _, g := range []int{0, 25} {
		if _, err := s.SetGear(ctx, g); !errors.Is(err, ErrGearOutOfRange) {
			t.Fatalf("gear %d: expected ErrGearOutOfRange, got %v", g, err)
		}
	}
	if s.CurrentGear() != 12 {
		t.Fatalf("expected gear unchanged at 12, got %d", s.CurrentGear())
	}
	if sink.count() != 0 {
		t.Fatalf("expected no dispatch on rejected set, got %d", sink.count())
	}
}

func TestSetGearDispatches(t *testing.T) {
	sink := &fakeSink{}
	s := start(t, gradientModel(), sink, Config{MinGear: 1, MaxGear: 24, InitialGear: 12})

	res, err := s.SetGear(context.Background(), 5)
	if err != nil || !res.Applied || res.Gear != 5 {
		t.Fatalf("expected applied jump to gear 5, got %+v (err %v)", res, err)
	}
}

func TestDispatchFailureKeepsGearAdvanced(t *testing.T) {
	sink := &fakeSink{err: errors.New("write timeout")}
	s := start(t, gradientModel(), sink, Config{MinGear: 1, MaxGear: 24, InitialGear: 12})

	res, err := s.ShiftUp(context.Background())
	if err == nil {
		t.Fatalf("expected dispatch error")
	}
	if !res.Applied || res.Gear != 13 || s.CurrentGear() != 13 {
		t.Fatalf("expected gear to stay advanced on write failure, got %+v", res)
	}
	if s.CurrentParameter() == nil {
		t.Fatalf("expected current parameter for the advanced gear")
	}
}

func TestSmoothingHoldSerializesShifts(t *testing.T) {
	sink := &fakeSink{}
	hold := 30 * time.Millisecond
	s := start(t, gradientModel(), sink, Config{MinGear: 1, MaxGear: 24, InitialGear: 12, Hold: hold})
	ctx := context.Background()

	begin := time.Now()
	s.ShiftUp(ctx)
	s.ShiftUp(ctx)
	if elapsed := time.Since(begin); elapsed < 2*hold {
		t.Fatalf("expected two holds (%v) before second shift completed, finished in %v", 2*hold, elapsed)
	}
}

func TestSmoothingHoldIsCancellable(t *testing.T) {
	sink := &fakeSink{}
	s, err := New(gradientModel(), sink, Config{MinGear: 1, MaxGear: 24, InitialGear: 12, Hold: time.Minute})
	if err != nil {
		t.Fatalf("expected shifter to build: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	time.AfterFunc(20*time.Millisecond, cancel)

	begin := time.Now()
	res, err := s.ShiftUp(context.Background())
	if time.Since(begin) > 5*time.Second {
		t.Fatalf("expected cancellation to abort the hold")
	}
	if err != nil || !res.Applied {
		t.Fatalf("expected the dispatched shift to survive cancellation, got %+v (err %v)", res, err)
	}
	if sink.count() != 1 {
		t.Fatalf("expected the message to be sent before cancellation, got %d", sink.count())
	}
}

func TestOnChangeFiresPerAppliedShift(t *testing.T) {
	sink := &fakeSink{}
	s, err := New(gradientModel(), sink, Config{MinGear: 1, MaxGear: 24, InitialGear: 23})
	if err != nil {
		t.Fatalf("expected shifter to build: %v", err)
	}

	var mu sync.Mutex
	var gears []int
	s.OnChange(func(r Result) {
		mu.Lock()
		gears = append(gears, r.Gear)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Run(ctx)

	s.ShiftUp(ctx)
	s.ShiftUp(ctx) // boundary, no callback

	mu.Lock()
	defer mu.Unlock()
	if len(gears) != 1 || gears[0] != 24 {
		t.Fatalf("expected one change callback for gear 24, got %v", gears)
	}
}

func TestReapplyPushesCurrentGear(t *testing.T) {
	sink := &fakeSink{}
	s := start(t, gradientModel(), sink, Config{MinGear: 1, MaxGear: 24, InitialGear: 12})

	res, err := s.Reapply(context.Background())
	if err != nil || !res.Applied || res.Gear != 12 {
		t.Fatalf("expected reapply of gear 12, got %+v (err %v)", res, err)
	}
	if sink.count() != 1 {
		t.Fatalf("expected one dispatch, got %d", sink.count())
	}
}
