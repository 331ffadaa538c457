package core

// ArtifactStore persists binary artifacts (generated documents) scoped by
// thread identifier. Implementations must be safe for concurrent use.
type ArtifactStore interface {
	Save(threadID, artifactID string, data []byte) error
	Get(threadID, artifactID string) ([]byte, error)
	List(threadID string) ([]string, error)
	Delete(threadID, artifactID string) error
}
