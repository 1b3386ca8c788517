package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saturnino-fabrica-de-software/vision-service/internal/domain"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/imagecodec"
)

// DefaultTimeout bounds a single model invocation when none is configured.
const DefaultTimeout = 10 * time.Second

// State is the lifecycle of a model capability. It moves from
// StateUninitialized to either StateUnavailable or StateLoaded exactly once.
type State int32

const (
	StateUninitialized State = iota
	StateUnavailable
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateUnavailable:
		return "unavailable"
	case StateLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// FailureKind classifies why a model call produced no result.
type FailureKind int

const (
	FailureUnavailable FailureKind = iota + 1
	FailureInference
	FailureTimeout
)

func (k FailureKind) String() string {
	switch k {
	case FailureUnavailable:
		return "unavailable"
	case FailureInference:
		return "inference"
	case FailureTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Failure is the only error returned by Model and Detector calls. Callers
// treat it as "no detections" and use Kind for logging.
type Failure struct {
	Kind  FailureKind
	Model string
	Err   error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s failure: %v", f.Model, f.Kind, f.Err)
	}
	return fmt.Sprintf("%s: %s failure", f.Model, f.Kind)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// ErrNotConfigured is the load error of a capability with no backend.
var ErrNotConfigured = errors.New("no backend configured")

// capability owns the lifecycle flag and the call guard shared by Model and
// Detector.
type capability struct {
	name    string
	state   atomic.Int32
	once    sync.Once
	loadErr error
	timeout time.Duration
	// one slot: model runtimes are not assumed reentrant
	sem chan struct{}
}

func (c *capability) init(name string, timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c.name = name
	c.timeout = timeout
	c.sem = make(chan struct{}, 1)
}

func (c *capability) State() State {
	return State(c.state.Load())
}

func (c *capability) Available() bool {
	return c.State() == StateLoaded
}

func (c *capability) load(ctx context.Context, fn func(context.Context) error) error {
	c.once.Do(func() {
		if fn == nil {
			c.loadErr = ErrNotConfigured
		} else {
			c.loadErr = safeCall(ctx, fn)
		}

		if c.loadErr != nil {
			c.state.Store(int32(StateUnavailable))
			return
		}
		c.state.Store(int32(StateLoaded))
	})
	return c.loadErr
}

func safeCall(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

type result[T any] struct {
	val T
	err error
}

// invoke runs fn under the capability lock and timeout. A panic inside fn is
// reported as an inference failure. Waiting for the lock and running fn are
// each bounded by the timeout, so a call queued behind another still gets
// the full budget. When a deadline passes the caller gets FailureTimeout
// right away; the lock is held until fn actually returns.
func invoke[T any](ctx context.Context, c *capability, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if !c.Available() {
		return zero, &Failure{Kind: FailureUnavailable, Model: c.name}
	}

	if err := c.acquire(ctx); err != nil {
		return zero, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		defer func() { <-c.sem }()
		defer func() {
			if r := recover(); r != nil {
				done <- result[T]{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := fn(ctx)
		done <- result[T]{val: v, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if ctx.Err() != nil {
				return zero, c.ctxFailure(ctx)
			}
			return zero, &Failure{Kind: FailureInference, Model: c.name, Err: res.err}
		}
		return res.val, nil
	case <-ctx.Done():
		return zero, c.ctxFailure(ctx)
	}
}

// acquire takes the call slot. The caller must release it.
func (c *capability) acquire(ctx context.Context) error {
	wait, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	select {
	case c.sem <- struct{}{}:
		return nil
	case <-wait.Done():
		return c.ctxFailure(wait)
	}
}

func (c *capability) ctxFailure(ctx context.Context) *Failure {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Failure{Kind: FailureTimeout, Model: c.name, Err: ctx.Err()}
	}
	return &Failure{Kind: FailureInference, Model: c.name, Err: ctx.Err()}
}

// Model guards a FaceModel. A nil impl is a capability that never loads.
type Model struct {
	capability
	impl FaceModel
}

func NewModel(impl FaceModel, timeout time.Duration) *Model {
	name := "none"
	if impl != nil {
		name = impl.Name()
	}
	m := &Model{impl: impl}
	m.init(name, timeout)
	return m
}

// Load resolves the lifecycle state. Subsequent calls return the first result.
func (m *Model) Load(ctx context.Context) error {
	if m.impl == nil {
		return m.load(ctx, nil)
	}
	return m.load(ctx, m.impl.Load)
}

func (m *Model) Name() string { return m.name }

// Meta describes the embeddings this model produces.
func (m *Model) Meta() domain.ReferenceMeta {
	if m.impl == nil {
		return domain.ReferenceMeta{Method: "none", Model: "none"}
	}
	return m.impl.Meta()
}

// DetectAndEmbed runs the model. The error, when non-nil, is a *Failure.
func (m *Model) DetectAndEmbed(ctx context.Context, img *imagecodec.Image) ([]Face, error) {
	return invoke(ctx, &m.capability, func(ctx context.Context) ([]Face, error) {
		return m.impl.DetectAndEmbed(ctx, img)
	})
}

// Detector guards a FaceDetector. A nil impl is a capability that never loads.
type Detector struct {
	capability
	impl FaceDetector
}

func NewDetector(impl FaceDetector, timeout time.Duration) *Detector {
	name := "none"
	if impl != nil {
		name = impl.Name()
	}
	d := &Detector{impl: impl}
	d.init(name, timeout)
	return d
}

func (d *Detector) Load(ctx context.Context) error {
	if d.impl == nil {
		return d.load(ctx, nil)
	}
	return d.load(ctx, d.impl.Load)
}

func (d *Detector) Name() string { return d.name }

// Detect runs the detector. The error, when non-nil, is a *Failure.
func (d *Detector) Detect(ctx context.Context, img *imagecodec.Image) ([]BoundingBox, error) {
	return invoke(ctx, &d.capability, func(ctx context.Context) ([]BoundingBox, error) {
		return d.impl.Detect(ctx, img)
	})
}
