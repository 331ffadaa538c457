// Package core provides the foundational domain types, interfaces and execution
// contexts used by agentdesk. It defines the core abstractions for:
//
//   - Messages (role-tagged content made of text, data and tool call parts)
//   - State (message history, data map and the remaining step budget)
//   - Sessions (threads persisted between turns)
//   - RunContext / ToolContext (per-turn and per-call execution scope)
//   - Pluggable stores for sessions and artifacts
//
// Concrete stores, providers and agents live in their own packages; core
// only exposes small interfaces so they can be swapped.
package core
