package switchback

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/switchback/pkg/domain"
)

const deployYAML = `
version: "1.0"
entrypoint: deploy
description: deployment pipeline
nodes:
  fetch:
    module: nodes.deploy.fetch
    function: fetch
  apply:
    module: nodes.deploy.apply
    function: apply
  exit:
    success:
      done:
        description: rolled out
    failure:
      error:
        description: rollout failed
start: fetch
transitions:
  fetch:
    success::done: apply
    failure::error: exit.failure.error
  apply:
    success::done: exit.success.done
    failure::error: exit.failure.error
options:
  max_iterations: 10
`

func writeGraph(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deploy_20250125140000.yml")
	require.NoError(t, os.WriteFile(path, []byte(deployYAML), 0o644))
	return path
}

func registerDeployNodes(wb *Workbench, fetchOutcome domain.Outcome) {
	reg := wb.Registry()
	reg.RegisterStart("fetch", func(ctx context.Context) (any, domain.Outcome) {
		return map[string]any{"fetched": true}, fetchOutcome
	})
	reg.RegisterNode("apply", func(ctx context.Context, state any) (any, domain.Outcome) {
		return state, domain.Success("")
	})
	reg.RegisterExit("exit.success.done", func(ctx context.Context, state any) any {
		return state
	})
	reg.RegisterExit("exit.failure.error", func(ctx context.Context, state any) any {
		return state
	})
}

func TestWorkbenchLoadValidateRun(t *testing.T) {
	wb := New()
	registerDeployNodes(wb, domain.Success(""))

	graph, err := wb.Load(writeGraph(t))
	require.NoError(t, err)
	assert.Equal(t, "deploy", graph.Entrypoint)

	report := wb.Validate(graph)
	assert.True(t, report.IsValid)

	result, err := wb.Run(context.Background(), graph)
	require.NoError(t, err)
	assert.Equal(t, "success.done", result.ExitState())
	assert.Equal(t, []string{"fetch", "apply", "exit.success.done"}, result.ExecutionPath)
	assert.True(t, result.IsSuccess())
}

func TestWorkbenchRunFailureBranch(t *testing.T) {
	wb := New()
	registerDeployNodes(wb, domain.Failure(""))

	graph, err := Parse([]byte(deployYAML))
	require.NoError(t, err)

	result, err := wb.Run(context.Background(), graph)
	require.NoError(t, err)
	assert.Equal(t, "failure.error", result.ExitState())
	assert.Equal(t, 1, result.ExitCode())
	assert.False(t, result.IsSuccess())
}

func TestWorkbenchGenerate(t *testing.T) {
	wb := New()
	graph, err := Parse([]byte(deployYAML))
	require.NoError(t, err)

	artifact, err := wb.Generate(graph, "deploy_20250125140000.yml")
	require.NoError(t, err)
	assert.Contains(t, artifact, "DO NOT EDIT")
	assert.Contains(t, artifact, "package deploy")
	assert.Contains(t, artifact, `"fetch::success::done"`)
}

func TestWorkbenchRejectsInvalidGraph(t *testing.T) {
	wb := New()
	graph, err := Parse([]byte(deployYAML))
	require.NoError(t, err)
	graph.StartNode = "ghost"

	_, err = wb.Generate(graph, "x.yml")
	var vErr *ValidationFailedError
	require.ErrorAs(t, err, &vErr)
	assert.False(t, vErr.Report.IsValid)

	_, err = wb.Run(context.Background(), graph)
	require.ErrorAs(t, err, &vErr)
}

func TestWorkbenchLoadMissingFile(t *testing.T) {
	wb := New()
	_, err := wb.Load("nope.yml")
	assert.Error(t, err)
}
