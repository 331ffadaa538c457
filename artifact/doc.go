// Package artifact contains concrete implementations of core.ArtifactStore.
// Generated documents (such as funding request .docx files) are stored here,
// scoped by conversation thread, in addition to being written to disk.
package artifact
