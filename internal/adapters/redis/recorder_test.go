package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisadapter "github.com/aretw0/switchback/internal/adapters/redis"
	"github.com/aretw0/switchback/pkg/domain"
	"github.com/aretw0/switchback/pkg/runner"
)

func newTestRecorder(t *testing.T, opts ...redisadapter.Option) (*redisadapter.Recorder, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return redisadapter.NewFromClient(client, opts...), mr
}

func TestRecorderObserverAndHistory(t *testing.T) {
	rec, _ := newTestRecorder(t)
	ctx := context.Background()

	start := runner.Start("start", func(ctx context.Context) (any, domain.Outcome) {
		return nil, domain.Success("")
	})
	transitions := runner.Transitions{
		"start::success::done": runner.Continue("second", func(ctx context.Context, state any) (any, domain.Outcome) {
			return state, domain.Success("")
		}),
		"second::success::done": runner.TerminateClass(domain.ClassifyLegacyExit("green_success", 0)),
	}

	result, err := runner.Run(start, transitions,
		runner.WithRunID("run-1"),
		runner.WithObserver(rec.Observer(ctx, "run-1")))
	require.NoError(t, err)

	history, err := rec.History(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "start", history[0].NodeName)
	assert.Equal(t, "start::success::done", history[0].State)
	assert.Equal(t, "second", history[1].NodeName)
	assert.Equal(t, result.ExecutionPath, []string{history[0].NodeName, history[1].NodeName})
}

func TestRecorderSaveResult(t *testing.T) {
	rec, _ := newTestRecorder(t)
	ctx := context.Background()

	result := &domain.RunResult{
		RunID:         "run-2",
		Class:         domain.ExitClass{Category: domain.CategorySuccess, Detail: "done", Code: 0},
		Iterations:    2,
		ExecutionPath: []string{"start", "second"},
	}
	require.NoError(t, rec.SaveResult(ctx, result))

	runs, err := rec.Runs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-2"}, runs)
}

func TestRecorderTTL(t *testing.T) {
	rec, mr := newTestRecorder(t, redisadapter.WithTTL(time.Minute), redisadapter.WithPrefix("test:run:"))
	ctx := context.Background()

	rec.Observer(ctx, "run-3")("start", "start::success::done", nil)

	history, err := rec.History(ctx, "run-3")
	require.NoError(t, err)
	require.Len(t, history, 1)

	mr.FastForward(2 * time.Minute)

	history, err = rec.History(ctx, "run-3")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRecorderHistoryEmptyRun(t *testing.T) {
	rec, _ := newTestRecorder(t)

	history, err := rec.History(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, history)
}
