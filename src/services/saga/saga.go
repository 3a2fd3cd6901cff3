// Package saga runs a sequence of steps and undoes the completed ones, in
// reverse, when a later step fails.
package saga

import (
	"context"
	"log"

	"github.com/pkg/errors"
)

type Step struct {
	Name string
	Run  func(ctx context.Context) error
	// Compensate must be idempotent. It also runs for the step that failed,
	// since a failed write may still have landed.
	Compensate func(ctx context.Context) error
}

type Saga struct {
	name  string
	steps []Step
}

func New(name string) *Saga {
	return &Saga{name: name}
}

func (s *Saga) Add(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Execute runs the steps in order. On failure it compensates and returns the
// step error; compensation errors are logged and attached to the message.
func (s *Saga) Execute(ctx context.Context) error {
	done := make([]Step, 0, len(s.steps))
	for _, step := range s.steps {
		done = append(done, step)
		if err := step.Run(ctx); err != nil {
			stepErr := errors.Wrapf(err, "%s: %s", s.name, step.Name)
			if cerr := s.compensate(ctx, done); cerr != nil {
				return errors.Wrapf(stepErr, "compensation incomplete (%v)", cerr)
			}
			return stepErr
		}
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context, done []Step) error {
	// compensations must finish even if the request was cancelled
	ctx = context.WithoutCancel(ctx)
	var first error
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			log.Printf("[saga] %s: compensate %s failed: %v", s.name, step.Name, err)
			if first == nil {
				first = errors.Wrap(err, step.Name)
			}
		}
	}
	return first
}
