// Package session houses concrete implementations of core.SessionStore, the
// checkpoint collaborator that keeps conversation threads between turns.
// Only the in-memory backend is provided; the engine depends on the core
// interface so another backend only changes the wiring layer.
package session
