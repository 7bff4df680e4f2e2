package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphAccessors(t *testing.T) {
	graph := &TransitionGraph{
		Nodes: []NodeDefinition{
			{Name: "fetch"},
			{Name: "process"},
		},
		Exits: []ExitDefinition{{Name: "green_done", Code: 0}},
		Transitions: []StateTransition{
			{FromNode: "fetch", FromState: "success::done", ToTarget: "process"},
			{FromNode: "fetch", FromState: "failure::http", ToTarget: "exit::green_done"},
			{FromNode: "process", FromState: "success::done", ToTarget: "exit::green_done"},
		},
	}

	require.NotNil(t, graph.Node("fetch"))
	assert.Nil(t, graph.Node("missing"))
	require.NotNil(t, graph.Exit("green_done"))
	assert.Nil(t, graph.Exit("missing"))

	from := graph.TransitionsFrom("fetch")
	require.Len(t, from, 2)
	assert.Equal(t, "process", from[0].ToTarget)

	assert.Equal(t, []string{"success::done", "failure::http"}, graph.StatesFrom("fetch"))
	assert.Nil(t, graph.StatesFrom("missing"))
}

func TestDefaultGraphOptions(t *testing.T) {
	opts := DefaultGraphOptions()
	assert.Equal(t, 100, opts.MaxIterations)
	assert.True(t, opts.EnableLoopDetection)
	assert.True(t, opts.StrictStateCheck)
}
