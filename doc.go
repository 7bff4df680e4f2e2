/*
Package switchback is a declarative workflow engine: it compiles transition
graphs (YAML descriptions of nodes, outcomes and the transitions those
outcomes trigger) into executable routing tables and interprets them at run
time, invoking registered node functions until a terminal node is reached.

# Concept

A workflow is a graph of named nodes. Each node function returns an Outcome
(success or failure plus a free-text detail) which the interpreter converts
into a state string like "fetch::success::done" and looks up in the routing
table. The entry there either names the next node or terminates the run with
an exit classification. Node implementations never see the table; they only
report outcomes.

The engine has three independent stages: the compiler parses descriptions
into an immutable graph model, the validator reports structural defects
(unreachable nodes, dead ends, cycles with no exit) with stable error codes,
and the generator emits a self-describing Go artifact encoding the graph.
The runtime interpreter consumes routing tables whether generated or
hand-built.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/switchback"
		"github.com/aretw0/switchback/pkg/domain"
	)

	func main() {
		wb := switchback.New()
		wb.Registry().RegisterStart("fetch", func(ctx context.Context) (any, domain.Outcome) {
			return map[string]any{"attempt": 1}, domain.Success("")
		})
		wb.Registry().RegisterExit("exit.success.done", func(ctx context.Context, state any) any {
			return state
		})

		graph, err := wb.Load("transition_graphs/deploy_20250125140000.yml")
		if err != nil {
			log.Fatal(err)
		}

		result, err := wb.Run(context.Background(), graph)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("finished %s in %d steps", result.ExitState(), result.Iterations)
	}

Node functions own the context value they return; the interpreter passes it
along without copying or locking. Concurrency happens above the engine by
running independent workflows, each with its own context and path.
*/
package switchback
