package dsl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/switchback/internal/validator"
	"github.com/aretw0/switchback/pkg/domain"
	"github.com/aretw0/switchback/pkg/registry"
	"github.com/aretw0/switchback/pkg/runner"
)

func TestBuilderSimpleGraph(t *testing.T) {
	g, err := New("deploy").
		Describe("Deploy pipeline").
		MaxIterations(20).
		Node("deploy").
		On("success::done", "apply").
		Node("apply").
		On("success::done", "exit.success.done").
		On("failure::error", "exit.failure.error").
		Exit("exit.success.done").
		Exit("exit.failure.error").Code(1).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "1.0", g.Version)
	assert.Equal(t, "deploy", g.Entrypoint)
	assert.Equal(t, "deploy", g.StartNode)
	assert.Equal(t, "Deploy pipeline", g.Description)
	assert.Equal(t, 20, g.Options.MaxIterations)
	assert.True(t, g.Options.StrictStateCheck)

	require.Len(t, g.Nodes, 4)
	assert.Equal(t, []string{"deploy", "apply", "exit.success.done", "exit.failure.error"},
		[]string{g.Nodes[0].Name, g.Nodes[1].Name, g.Nodes[2].Name, g.Nodes[3].Name})

	deploy := g.Node("deploy")
	require.NotNil(t, deploy)
	assert.Equal(t, "nodes.deploy.deploy", deploy.Module)
	assert.Equal(t, "deploy", deploy.Function)
	assert.False(t, deploy.IsExit)

	fail := g.Node("exit.failure.error")
	require.NotNil(t, fail)
	assert.True(t, fail.IsExit)
	assert.Equal(t, 1, fail.ExitCode)
	assert.Equal(t, "nodes.exit.failure.error", fail.Module)

	require.Len(t, g.Transitions, 3)
	assert.Equal(t, domain.StateTransition{
		FromNode: "deploy", FromState: "success::done", ToTarget: "apply",
	}, g.Transitions[0])
}

func TestBuilderProducesValidGraph(t *testing.T) {
	g, err := New("fetch").
		Node("fetch").
		On("success::done", "exit.success.done").
		Exit("exit.success.done").
		Build()
	require.NoError(t, err)

	result := validator.Validate(g)
	assert.True(t, result.IsValid, "findings: %v %v", result.Errors, result.Warnings)
}

func TestBuilderLegacyExit(t *testing.T) {
	g, err := New("fetch").
		LegacyExit("done", 0, "all good").
		Node("fetch").
		On("success::done", "exit::done").
		Build()
	require.NoError(t, err)

	require.Len(t, g.Exits, 1)
	assert.Equal(t, domain.ExitDefinition{Name: "done", Code: 0, Description: "all good"}, g.Exits[0])
}

func TestBuilderExitCodeFromName(t *testing.T) {
	g, err := New("deploy").
		Node("deploy").
		On("success::done", "exit.success.done").
		On("failure::error", "exit.failure.error").
		On("failure::disk", "exit.failure.disk").
		On("warning::partial", "exit.warning.partial").
		Exit("exit.success.done").
		Exit("exit.failure.error").
		Exit("exit.failure.disk").Code(3).
		Exit("exit.warning.partial").
		Build()
	require.NoError(t, err)

	assert.Equal(t, 0, g.Node("exit.success.done").ExitCode)
	assert.Equal(t, 1, g.Node("exit.failure.error").ExitCode)
	assert.Equal(t, 2, g.Node("exit.warning.partial").ExitCode)

	// An explicit Code wins over the name.
	assert.Equal(t, 3, g.Node("exit.failure.disk").ExitCode)
}

func TestBuilderFailureExitFailsRun(t *testing.T) {
	g, err := New("deploy").
		Node("deploy").
		On("failure::error", "exit.failure.error").
		Exit("exit.failure.error").
		Build()
	require.NoError(t, err)

	reg := registry.New()
	reg.RegisterStart("deploy", func(ctx context.Context) (any, domain.Outcome) {
		return nil, domain.Failure("error")
	})
	reg.RegisterExit("exit.failure.error", func(ctx context.Context, state any) any {
		return state
	})

	start, transitions, err := reg.Build(g)
	require.NoError(t, err)

	result, err := runner.Run(start, transitions)
	require.NoError(t, err)
	assert.False(t, result.IsSuccess())
	assert.Equal(t, 1, result.ExitCode())
	assert.Equal(t, "failure.error", result.ExitState())
}

func TestBuilderRedeclarationReturnsSameNode(t *testing.T) {
	b := New("a")
	b.Node("a").On("success::done", "b")
	b.Node("b").On("success::done", "exit.success.done")
	b.Exit("exit.success.done")

	// Adding to an already declared node extends it instead of duplicating.
	b.Node("a").On("failure::error", "exit.success.done")

	g, err := b.Build()
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Transitions, 3)
}

func TestBuilderStartOverride(t *testing.T) {
	g, err := New("deploy").
		Start("fetch").
		Node("prepare").
		On("success::done", "exit.success.done").
		Node("fetch").
		On("success::done", "prepare").
		Exit("exit.success.done").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "fetch", g.StartNode)
}

func TestBuilderErrors(t *testing.T) {
	t.Run("no nodes declared", func(t *testing.T) {
		_, err := New("a").Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "start node")
	})

	t.Run("only exit nodes never pick a start", func(t *testing.T) {
		b := New("a")
		b.Exit("exit.success.done")
		_, err := b.Build()
		require.Error(t, err)
	})

	t.Run("empty entrypoint", func(t *testing.T) {
		_, err := New("").Build()
		require.Error(t, err)
	})
}
