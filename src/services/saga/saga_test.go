package saga

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteRunsAllSteps(t *testing.T) {
	var trace []string
	s := New("ok").
		Add(Step{Name: "a", Run: func(context.Context) error { trace = append(trace, "a"); return nil }}).
		Add(Step{Name: "b", Run: func(context.Context) error { trace = append(trace, "b"); return nil }})

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"a", "b"}, trace)
}

func TestExecuteCompensatesInReverseIncludingFailedStep(t *testing.T) {
	var trace []string
	boom := errors.New("boom")
	step := func(name string, fail bool) Step {
		return Step{
			Name: name,
			Run: func(context.Context) error {
				trace = append(trace, "run "+name)
				if fail {
					return boom
				}
				return nil
			},
			Compensate: func(context.Context) error {
				trace = append(trace, "undo "+name)
				return nil
			},
		}
	}

	err := New("create").Add(step("a", false)).Add(step("b", false)).Add(step("c", true)).Add(step("d", false)).
		Execute(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, []string{"run a", "run b", "run c", "undo c", "undo b", "undo a"}, trace)
}

func TestCompensationSurvivesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var compensatedWithLiveCtx bool

	err := New("cancel").
		Add(Step{
			Name: "a",
			Run:  func(context.Context) error { return nil },
			Compensate: func(ctx context.Context) error {
				compensatedWithLiveCtx = ctx.Err() == nil
				return nil
			},
		}).
		Add(Step{Name: "b", Run: func(context.Context) error { cancel(); return context.Canceled }}).
		Execute(ctx)

	require.Error(t, err)
	assert.True(t, compensatedWithLiveCtx)
}

func TestCompensationErrorIsReported(t *testing.T) {
	err := New("partial").
		Add(Step{
			Name:       "a",
			Run:        func(context.Context) error { return nil },
			Compensate: func(context.Context) error { return errors.New("undo failed") },
		}).
		Add(Step{Name: "b", Run: func(context.Context) error { return errors.New("write failed") }}).
		Execute(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "compensation incomplete")
	assert.Contains(t, err.Error(), "write failed")
}
