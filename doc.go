// Package mindful is an LLM-agnostic SDK for building mental-health
// support agents: crisis keyword detection, mood tracking with trend
// analysis, crisis resource and coping strategy catalogs, and a
// multi-agent assembly (triage, crisis, support, resource personas under
// one coordinator) whose routing is delegated entirely to the hosted
// model's tool calling.
//
// The SDK never calls a model itself; callers supply an LLMFunc. A Gemini
// adapter is provided in gemini.go, and a runnable console client lives
// under examples/console.
package mindful
