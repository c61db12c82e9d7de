package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/playlist-resolver/internal/metadata"
	"github.com/rohmanhakim/playlist-resolver/internal/storage"
	"github.com/rohmanhakim/playlist-resolver/pkg/hashutil"
)

type recordedError struct {
	action string
	cause  metadata.ErrorCause
	attrs  []metadata.Attribute
}

// metadataSinkMock keeps the errors and artifacts the sink reports.
type metadataSinkMock struct {
	mu        sync.Mutex
	errors    []recordedError
	artifacts []string
}

func (m *metadataSinkMock) RecordError(_ time.Time, _ string, action string, cause metadata.ErrorCause, _ string, attrs []metadata.Attribute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, recordedError{action: action, cause: cause, attrs: attrs})
}

func (m *metadataSinkMock) RecordFetch(metadata.FetchSource, string, int, time.Duration, int, int) {}

func (m *metadataSinkMock) RecordSniff(string, string, string, int, string, int) {}

func (m *metadataSinkMock) RecordResolve(string, string, string, int, time.Duration) {}

func (m *metadataSinkMock) RecordArtifact(path string, _ []metadata.Attribute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts = append(m.artifacts, path)
}

func expectedRefHash(t *testing.T, ref string) string {
	t.Helper()
	full, err := hashutil.HashBytes([]byte(ref), hashutil.HashAlgoBLAKE3)
	if err != nil {
		t.Fatalf("failed to hash ref: %v", err)
	}
	return full[:12]
}

func TestLocalSink_Write_Success(t *testing.T) {
	tests := []struct {
		name      string
		ref       string
		extension string
		content   string
		wantExt   string
	}{
		{
			name:      "text report",
			ref:       "http://example.com/radio.pls",
			extension: "txt",
			content:   "playlist http://example.com/radio.pls\n",
			wantExt:   ".txt",
		},
		{
			name:      "extension with leading dot",
			ref:       "/home/me/music/list.m3u",
			extension: ".jsonl",
			content:   `{"event":"playlist-started"}` + "\n",
			wantExt:   ".jsonl",
		},
		{
			name:      "no extension",
			ref:       "feed://example.com/podcast.xml",
			extension: "",
			content:   "x",
			wantExt:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			mockSink := &metadataSinkMock{}
			sink := storage.NewLocalSink(mockSink)

			result, writeErr := sink.Write(tempDir, storage.Artifact{
				Ref:       tt.ref,
				Content:   []byte(tt.content),
				Extension: tt.extension,
			})
			if writeErr != nil {
				t.Fatalf("expected no error, got: %v", writeErr)
			}

			refHash := expectedRefHash(t, tt.ref)
			if result.RefHash() != refHash {
				t.Errorf("expected RefHash %s, got %s", refHash, result.RefHash())
			}

			expectedPath := filepath.Join(tempDir, refHash+tt.wantExt)
			if result.Path() != expectedPath {
				t.Errorf("expected Path %s, got %s", expectedPath, result.Path())
			}

			written, err := os.ReadFile(expectedPath)
			if err != nil {
				t.Fatalf("failed to read written file: %v", err)
			}
			if string(written) != tt.content {
				t.Errorf("expected content %q, got %q", tt.content, written)
			}

			contentHash, _ := hashutil.HashBytes([]byte(tt.content), hashutil.HashAlgoBLAKE3)
			if result.ContentHash() != contentHash {
				t.Errorf("expected ContentHash %s, got %s", contentHash, result.ContentHash())
			}

			if len(mockSink.artifacts) != 1 || mockSink.artifacts[0] != expectedPath {
				t.Errorf("expected one artifact at %s, got %v", expectedPath, mockSink.artifacts)
			}
			if len(mockSink.errors) != 0 {
				t.Errorf("expected no recorded errors, got %v", mockSink.errors)
			}
		})
	}
}

func TestLocalSink_Write_CreatesOutputDir(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "reports", "today")
	sink := storage.NewLocalSink(nil)

	result, writeErr := sink.Write(outputDir, storage.Artifact{Ref: "a", Content: []byte("a"), Extension: "txt"})
	if writeErr != nil {
		t.Fatalf("expected no error, got: %v", writeErr)
	}
	if filepath.Dir(result.Path()) != outputDir {
		t.Errorf("expected file inside %s, got %s", outputDir, result.Path())
	}
}

func TestLocalSink_Write_Idempotent(t *testing.T) {
	tempDir := t.TempDir()
	sink := storage.NewLocalSink(&metadataSinkMock{})
	ref := "http://example.com/list.m3u"

	first, err := sink.Write(tempDir, storage.Artifact{Ref: ref, Content: []byte("first"), Extension: "txt"})
	if err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	second, err := sink.Write(tempDir, storage.Artifact{Ref: ref, Content: []byte("second"), Extension: "txt"})
	if err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	if first.Path() != second.Path() {
		t.Errorf("expected the same path for the same ref, got %s and %s", first.Path(), second.Path())
	}

	written, _ := os.ReadFile(second.Path())
	if string(written) != "second" {
		t.Errorf("expected rerun to overwrite, got %q", written)
	}

	entries, _ := os.ReadDir(tempDir)
	if len(entries) != 1 {
		t.Errorf("expected exactly one file, got %d", len(entries))
	}
}

func TestLocalSink_Write_DistinctRefs(t *testing.T) {
	tempDir := t.TempDir()
	sink := storage.NewLocalSink(&metadataSinkMock{})

	refs := []string{
		"http://example.com/a.m3u",
		"http://example.com/b.m3u",
		"file:///music/a.m3u",
	}
	seen := make(map[string]bool)
	for _, ref := range refs {
		result, err := sink.Write(tempDir, storage.Artifact{Ref: ref, Content: []byte(ref), Extension: "txt"})
		if err != nil {
			t.Fatalf("write of %s failed: %v", ref, err)
		}
		if seen[result.Path()] {
			t.Errorf("path collision for %s", ref)
		}
		seen[result.Path()] = true
	}
}

func TestLocalSink_Write_ErrorHandling(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		expectedCause storage.StorageErrorCause
	}{
		{
			name: "output dir below a regular file",
			setupFunc: func(t *testing.T) string {
				blocker := filepath.Join(t.TempDir(), "blocker")
				if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
					t.Fatalf("setup failed: %v", err)
				}
				return filepath.Join(blocker, "reports")
			},
			expectedCause: storage.ErrCausePathError,
		},
		{
			name: "target file is a directory",
			setupFunc: func(t *testing.T) string {
				dir := t.TempDir()
				target := filepath.Join(dir, expectedRefHash(t, "http://example.com/page")+".txt")
				if err := os.Mkdir(target, 0o755); err != nil {
					t.Fatalf("setup failed: %v", err)
				}
				return dir
			},
			expectedCause: storage.ErrCauseWriteFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputDir := tt.setupFunc(t)
			mockSink := &metadataSinkMock{}
			sink := storage.NewLocalSink(mockSink)

			_, writeErr := sink.Write(outputDir, storage.Artifact{
				Ref:       "http://example.com/page",
				Content:   []byte("content"),
				Extension: "txt",
			})
			if writeErr == nil {
				t.Fatal("expected error but got none")
			}

			storageErr, ok := writeErr.(*storage.StorageError)
			if !ok {
				t.Fatalf("expected *storage.StorageError, got %T", writeErr)
			}
			if storageErr.Cause != tt.expectedCause {
				t.Errorf("expected cause %q, got %q", tt.expectedCause, storageErr.Cause)
			}
			if !strings.HasPrefix(writeErr.Error(), "storage error: "+string(tt.expectedCause)) {
				t.Errorf("unexpected error message: %s", writeErr.Error())
			}

			if len(mockSink.errors) != 1 {
				t.Fatalf("expected one recorded error, got %d", len(mockSink.errors))
			}
			recorded := mockSink.errors[0]
			if recorded.action != "LocalSink.Write" {
				t.Errorf("expected action LocalSink.Write, got %s", recorded.action)
			}
			if recorded.cause != metadata.CauseStorageFailure {
				t.Errorf("expected cause storage_failure, got %s", recorded.cause)
			}
			if len(mockSink.artifacts) != 0 {
				t.Errorf("expected no artifacts, got %v", mockSink.artifacts)
			}
		})
	}
}
