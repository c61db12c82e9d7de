package storage

// Artifact is one resolution report ready to be persisted.
type Artifact struct {
	// Ref is the top-level reference the report was produced for.
	Ref       string
	Content   []byte
	Extension string
}

type WriteResult struct {
	refHash     string // identity (filename without extension)
	path        string
	contentHash string
}

func NewWriteResult(
	refHash string,
	path string,
	contentHash string,
) WriteResult {
	return WriteResult{
		refHash:     refHash,
		path:        path,
		contentHash: contentHash,
	}
}

func (w *WriteResult) RefHash() string {
	return w.refHash
}

func (w *WriteResult) Path() string {
	return w.path
}

func (w *WriteResult) ContentHash() string {
	return w.contentHash
}
