// Package shifter owns the virtual gear. Every mutation runs through a
// single worker goroutine, so one gear transition (model evaluation,
// dispatch, smoothing hold) finishes before the next is accepted.
package shifter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SoNdA11/argus-shift/internal/gearing"
	"github.com/SoNdA11/argus-shift/internal/protocol"
)

// Sink receives encoded control messages. The BLE transport implements
// it; tests inject fakes.
type Sink interface {
	Write(msg protocol.ControlMessage) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(protocol.ControlMessage) error

func (f SinkFunc) Write(m protocol.ControlMessage) error { return f(m) }

var ErrGearOutOfRange = errors.New("shifter: gear out of range")

// Result reports the outcome of one request.
type Result struct {
	Gear      int               // gear after the request
	Applied   bool              // false when a shift hit a gear bound
	Parameter gearing.Parameter // parameter dispatched; nil when not applied
}

// Config bounds the gear range and sets the smoothing hold applied
// after each dispatch.
type Config struct {
	MinGear     int
	MaxGear     int
	InitialGear int
	Hold        time.Duration
}

type opKind int

const (
	opShiftUp opKind = iota
	opShiftDown
	opSetGear
	opReapply
)

type request struct {
	op   opKind
	gear int
	resp chan response
}

type response struct {
	res Result
	err error
}

// Shifter is the sole owner and mutator of the gear state.
type Shifter struct {
	min, max int
	model    gearing.Model
	sink     Sink
	hold     time.Duration
	onChange func(Result)

	reqs chan request

	mu    sync.Mutex
	gear  int
	param gearing.Parameter
}

// New validates the configuration and seeds the current parameter from
// the initial gear. Run must be started before requests complete.
func New(model gearing.Model, sink Sink, cfg Config) (*Shifter, error) {
	if cfg.MinGear > cfg.MaxGear {
		return nil, fmt.Errorf("shifter: bad gear range [%d, %d]", cfg.MinGear, cfg.MaxGear)
	}
	if cfg.InitialGear < cfg.MinGear || cfg.InitialGear > cfg.MaxGear {
		return nil, fmt.Errorf("%w: initial gear %d not in [%d, %d]",
			ErrGearOutOfRange, cfg.InitialGear, cfg.MinGear, cfg.MaxGear)
	}
	return &Shifter{
		min:   cfg.MinGear,
		max:   cfg.MaxGear,
		model: model,
		sink:  sink,
		hold:  cfg.Hold,
		reqs:  make(chan request),
		gear:  cfg.InitialGear,
		param: model.Evaluate(cfg.InitialGear),
	}, nil
}

// OnChange registers a callback invoked by the worker after every
// applied gear change, before the smoothing hold. Set it before Run.
func (s *Shifter) OnChange(fn func(Result)) {
	s.onChange = fn
}

// Run processes requests until ctx is cancelled.
func (s *Shifter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-s.reqs:
			req.resp <- s.handle(ctx, req)
		}
	}
}

// ShiftUp moves one gear toward MaxGear. At the top it returns an
// unapplied Result and no error; nothing is dispatched.
func (s *Shifter) ShiftUp(ctx context.Context) (Result, error) {
	return s.do(ctx, request{op: opShiftUp})
}

// ShiftDown moves one gear toward MinGear.
func (s *Shifter) ShiftDown(ctx context.Context) (Result, error) {
	return s.do(ctx, request{op: opShiftDown})
}

// SetGear jumps straight to a gear. Out-of-range values fail with
// ErrGearOutOfRange and change nothing.
func (s *Shifter) SetGear(ctx context.Context, gear int) (Result, error) {
	return s.do(ctx, request{op: opSetGear, gear: gear})
}

// Reapply re-evaluates and re-dispatches the parameter for the current
// gear. Used at startup and by callers that want to re-issue the last
// parameter after a failed write.
func (s *Shifter) Reapply(ctx context.Context) (Result, error) {
	return s.do(ctx, request{op: opReapply})
}

// CurrentGear returns the authoritative gear.
func (s *Shifter) CurrentGear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gear
}

// CurrentParameter returns the parameter for the current gear.
func (s *Shifter) CurrentParameter() gearing.Parameter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.param
}

// MinGear returns the lower gear bound.
func (s *Shifter) MinGear() int { return s.min }

// MaxGear returns the upper gear bound.
func (s *Shifter) MaxGear() int { return s.max }

func (s *Shifter) do(ctx context.Context, req request) (Result, error) {
	req.resp = make(chan response, 1)
	select {
	case s.reqs <- req:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	select {
	case r := <-req.resp:
		return r.res, r.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (s *Shifter) handle(ctx context.Context, req request) response {
	gear := s.CurrentGear()

	target := gear
	switch req.op {
	case opShiftUp:
		if gear >= s.max {
			return response{res: Result{Gear: gear}}
		}
		target = gear + 1
	case opShiftDown:
		if gear <= s.min {
			return response{res: Result{Gear: gear}}
		}
		target = gear - 1
	case opSetGear:
		if req.gear < s.min || req.gear > s.max {
			err := fmt.Errorf("%w: %d not in [%d, %d]", ErrGearOutOfRange, req.gear, s.min, s.max)
			return response{res: Result{Gear: gear}, err: err}
		}
		target = req.gear
	case opReapply:
	}
	return s.apply(ctx, target)
}

// apply advances the gear, evaluates the model and dispatches the
// encoded parameter. The gear stays advanced even when the write fails:
// the next shift must compute from the gear the rider asked for, and a
// caller wanting strict consistency can Reapply.
func (s *Shifter) apply(ctx context.Context, gear int) response {
	param := s.model.Evaluate(gear)

	s.mu.Lock()
	s.gear = gear
	s.param = param
	s.mu.Unlock()

	res := Result{Gear: gear, Applied: true, Parameter: param}

	msg, err := encode(param)
	if err != nil {
		return response{res: res, err: err}
	}
	if err := s.sink.Write(msg); err != nil {
		return response{res: res, err: fmt.Errorf("shifter: dispatch: %w", err)}
	}

	if s.onChange != nil {
		s.onChange(res)
	}

	// The hold throttles back-to-back writes to the trainer's control
	// channel. Cancellation abandons only the pause; the message above
	// is already out.
	if s.hold > 0 {
		select {
		case <-time.After(s.hold):
		case <-ctx.Done():
		}
	}
	return response{res: res}
}

func encode(p gearing.Parameter) (protocol.ControlMessage, error) {
	switch v := p.(type) {
	case gearing.Simulation:
		return protocol.EncodeSetSimulation(v.Grade, v.Crr, v.WindSpeed), nil
	case gearing.Resistance:
		return protocol.EncodeSetResistance(v.Percent), nil
	default:
		return protocol.ControlMessage{}, fmt.Errorf("shifter: unencodable parameter %T", p)
	}
}
