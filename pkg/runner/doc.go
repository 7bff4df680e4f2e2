/*
Package runner is the runtime interpreter for transition tables.

It drives a workflow by invoking a start function, deriving the canonical
state string from the returned Outcome, looking the string up in the table
and repeating until a terminal step, an undefined state or the iteration
bound is reached. Tables are usually built by the code generator or
registry.Route, but any hand-built Transitions value works the same.

A run is strictly sequential: there is no internal parallelism, the table
and observer are read-only during the run, and context values are handed
from node to node by ownership transfer. Concurrency, when wanted, is
achieved by running independent workflows side by side, each with its own
context and path.
*/
package runner
