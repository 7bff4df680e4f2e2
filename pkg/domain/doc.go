/*
Package domain contains the core value types of the Switchback engine.

It defines the Graph Model (TransitionGraph, NodeDefinition, StateTransition),
the Outcome returned by node invocations, the canonical state-string format
used as the routing key, and the result types produced by a workflow run.
This package is kept pure and free of I/O; parsing, validation, code
generation and execution live in their own packages and consume these types
by value.

# Key Entities

  - TransitionGraph: the immutable description of a workflow graph.
  - NodeDefinition: a named unit of work, optionally flagged as an exit.
  - StateTransition: an outcome-driven edge between nodes.
  - Outcome: the success/failure classification a node returns.
  - RunResult: the immutable snapshot produced by one interpreter run.
*/
package domain
