package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rohmanhakim/playlist-resolver/internal/metadata"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
	"github.com/rohmanhakim/playlist-resolver/pkg/fileutil"
	"github.com/rohmanhakim/playlist-resolver/pkg/hashutil"
)

/*
Responsibilities
- Persist resolution reports
- Ensure deterministic filenames

Output Characteristics
- One file per top-level reference
- Idempotent writes
- Overwrite-safe reruns
*/

// refHashLength is the number of hex characters of the reference hash used
// as the filename.
const refHashLength = 12

type Sink interface {
	Write(outputDir string, artifact Artifact) (WriteResult, failure.ClassifiedError)
}

type LocalSink struct {
	metadataSink metadata.MetadataSink
}

func NewLocalSink(metadataSink metadata.MetadataSink) *LocalSink {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &LocalSink{
		metadataSink: metadataSink,
	}
}

func (s *LocalSink) Write(outputDir string, artifact Artifact) (WriteResult, failure.ClassifiedError) {
	writeResult, err := write(outputDir, artifact)
	if err != nil {
		var storageError *StorageError
		errors.As(err, &storageError)
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"LocalSink.Write",
			mapStorageErrorToMetadataCause(storageError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrRef, artifact.Ref),
				metadata.NewAttr(metadata.AttrWritePath, storageError.Path),
			},
		)
		return WriteResult{}, storageError
	}
	s.metadataSink.RecordArtifact(
		writeResult.Path(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrRef, artifact.Ref),
			metadata.NewAttr(metadata.AttrHash, writeResult.ContentHash()),
		},
	)
	return writeResult, nil
}

func write(outputDir string, artifact Artifact) (WriteResult, failure.ClassifiedError) {
	refHash, err := hashutil.ShortHash(artifact.Ref, hashutil.HashAlgoBLAKE3, refHashLength)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseHashComputationFailed,
		}
	}

	if fileErr := fileutil.EnsureDir(outputDir); fileErr != nil {
		return WriteResult{}, &StorageError{
			Message:   fileErr.Error(),
			Retryable: false,
			Cause:     ErrCausePathError,
			Path:      outputDir,
		}
	}

	filename := refHash
	if ext := strings.TrimPrefix(artifact.Extension, "."); ext != "" {
		filename += "." + ext
	}
	fullPath := filepath.Join(outputDir, filename)

	if err := os.WriteFile(fullPath, artifact.Content, 0o644); err != nil {
		cause := ErrCauseWriteFailure
		retryable := false
		if errors.Is(err, syscall.ENOSPC) {
			cause = ErrCauseDiskFull
			retryable = true
		}
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: retryable,
			Cause:     cause,
			Path:      fullPath,
		}
	}

	contentHash, err := hashutil.HashBytes(artifact.Content, hashutil.HashAlgoBLAKE3)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseHashComputationFailed,
			Path:      fullPath,
		}
	}

	return NewWriteResult(refHash, fullPath, contentHash), nil
}
