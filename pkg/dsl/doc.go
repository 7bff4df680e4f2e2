/*
Package dsl builds TransitionGraphs programmatically, as an alternative to
YAML graph descriptions. It is useful for tests, for dynamically assembled
workflows, and anywhere IDE type-checking beats editing YAML.

Example usage:

	g, err := dsl.New("deploy").
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

The resulting graph goes through the same validator, generator and runner
as a parsed one.
*/
package dsl
