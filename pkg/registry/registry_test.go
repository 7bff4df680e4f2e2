package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/switchback/pkg/domain"
	"github.com/aretw0/switchback/pkg/runner"
)

func noopNode(ctx context.Context, state any) (any, domain.Outcome) {
	return state, domain.Success("")
}

func noopExit(ctx context.Context, state any) any {
	return state
}

func TestRoute(t *testing.T) {
	reg := New()
	reg.RegisterNode("process", noopNode)
	reg.RegisterExit("exit.success.done", noopExit)

	transitions, err := reg.Route(map[string]string{
		"fetch::success::done":    "process",
		"process::success::done":  "exit.success.done",
		"process::failure::error": "exit::red::fatal",
	})
	require.NoError(t, err)
	require.Len(t, transitions, 3)

	next := transitions["fetch::success::done"]
	assert.False(t, next.IsTerminal())
	assert.Equal(t, "process", next.Name())

	exit := transitions["process::success::done"]
	assert.True(t, exit.IsTerminal())
	assert.Equal(t, "exit.success.done", exit.Name())
	assert.Equal(t, "success.done", exit.Class().State())

	legacy := transitions["process::failure::error"]
	assert.True(t, legacy.IsTerminal())
	assert.Equal(t, "", legacy.Name())
	assert.Equal(t, "failure.fatal", legacy.Class().State())
	assert.Equal(t, 1, legacy.Class().Code)
}

func TestRouteMissingRegistration(t *testing.T) {
	reg := New()

	t.Run("node", func(t *testing.T) {
		_, err := reg.Route(map[string]string{"a::success::done": "missing"})
		var nre *NotRegisteredError
		require.ErrorAs(t, err, &nre)
		assert.Equal(t, "node", nre.Kind)
		assert.Equal(t, "missing", nre.Name)
	})

	t.Run("exit", func(t *testing.T) {
		_, err := reg.Route(map[string]string{"a::success::done": "exit.success.done"})
		var nre *NotRegisteredError
		require.ErrorAs(t, err, &nre)
		assert.Equal(t, "exit", nre.Kind)
	})

	t.Run("invalid marker color", func(t *testing.T) {
		_, err := reg.Route(map[string]string{"a::success::done": "exit::purple::odd"})
		assert.Error(t, err)
	})
}

func TestRouteOverwriteRegistration(t *testing.T) {
	reg := New()
	reg.RegisterNode("n", noopNode)
	reg.RegisterNode("n", func(ctx context.Context, state any) (any, domain.Outcome) {
		return state, domain.Failure("replaced")
	})

	transitions, err := reg.Route(map[string]string{"a::success::done": "n"})
	require.NoError(t, err)

	var states []string
	start := runner.Start("a", func(ctx context.Context) (any, domain.Outcome) {
		return nil, domain.Success("")
	})
	_, err = runner.Run(start, transitions,
		runner.WithStrictStates(false),
		runner.WithObserver(func(node, state string, _ any) {
			states = append(states, state)
		}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a::success::done", "n::failure::replaced"}, states)
}

func TestBuild(t *testing.T) {
	graph := &domain.TransitionGraph{
		Version:    "1.0",
		Entrypoint: "deploy",
		StartNode:  "fetch",
		Nodes: []domain.NodeDefinition{
			{Name: "fetch", Module: "nodes.fetch", Function: "fetch"},
			{Name: "exit.warning.partial", Module: "nodes.exit.warning.partial", Function: "partial", IsExit: true, ExitCode: 3},
		},
		Exits: []domain.ExitDefinition{
			{Name: "green_resolved", Code: 0},
		},
		Transitions: []domain.StateTransition{
			{FromNode: "fetch", FromState: "success::done", ToTarget: "exit::green_resolved"},
			{FromNode: "fetch", FromState: "failure::error", ToTarget: "exit.warning.partial"},
		},
	}

	reg := New()
	reg.RegisterStart("fetch", func(ctx context.Context) (any, domain.Outcome) {
		return "ctx", domain.Success("")
	})
	reg.RegisterExit("exit.warning.partial", noopExit)

	start, transitions, err := reg.Build(graph)
	require.NoError(t, err)
	assert.Equal(t, "fetch", start.Name)

	legacy := transitions["fetch::success::done"]
	require.True(t, legacy.IsTerminal())
	assert.Equal(t, "success.resolved", legacy.Class().State())
	assert.Equal(t, 0, legacy.Class().Code)

	declared := transitions["fetch::failure::error"]
	require.True(t, declared.IsTerminal())
	assert.Equal(t, 3, declared.Class().Code)
	assert.Equal(t, domain.CategoryFailure, declared.Class().Category)
}

func TestBuildMissingStart(t *testing.T) {
	graph := &domain.TransitionGraph{StartNode: "fetch"}

	_, _, err := New().Build(graph)

	var nre *NotRegisteredError
	require.ErrorAs(t, err, &nre)
	assert.Equal(t, "start", nre.Kind)
}

func TestBuildRunsEndToEnd(t *testing.T) {
	graph := &domain.TransitionGraph{
		StartNode: "start",
		Nodes: []domain.NodeDefinition{
			{Name: "start", Module: "nodes.start", Function: "start"},
			{Name: "second", Module: "nodes.second", Function: "second"},
		},
		Exits: []domain.ExitDefinition{{Name: "green_success", Code: 0}},
		Transitions: []domain.StateTransition{
			{FromNode: "start", FromState: "success::done", ToTarget: "second"},
			{FromNode: "second", FromState: "success::done", ToTarget: "exit::green_success"},
		},
	}

	reg := New()
	reg.RegisterStart("start", func(ctx context.Context) (any, domain.Outcome) {
		return 1, domain.Success("")
	})
	reg.RegisterNode("second", func(ctx context.Context, state any) (any, domain.Outcome) {
		return state.(int) + 1, domain.Success("")
	})

	start, transitions, err := reg.Build(graph)
	require.NoError(t, err)

	result, err := runner.Run(start, transitions)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Iterations)
	assert.Equal(t, []string{"start", "second"}, result.ExecutionPath)
	assert.Equal(t, "success.done", result.ExitState())
	assert.Equal(t, 2, result.Context)
	assert.True(t, result.IsSuccess())
}
