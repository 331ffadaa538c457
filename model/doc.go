// Package model defines the provider‑agnostic abstractions for interacting
// with chat models inside agentdesk.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Normalize tool / function call representation (ToolDefinition)
//   - Keep request/response shapes minimal and transport independent
//   - Offer a deterministic FakeModel for tests and offline runs
//
// Providers (OpenAI-compatible endpoints, Anthropic) implement the Model
// interface in sub-packages so agents and flows stay decoupled from vendor SDKs.
package model
