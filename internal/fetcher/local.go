package fetcher

import (
	"context"
	"errors"
	"time"

	"github.com/rohmanhakim/playlist-resolver/internal/metadata"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
	"github.com/rohmanhakim/playlist-resolver/pkg/fileutil"
	"github.com/rohmanhakim/playlist-resolver/pkg/urlutil"
)

// LocalFetcher serves file URIs and absolute local paths.
type LocalFetcher struct {
	metadataSink metadata.MetadataSink
}

func NewLocalFetcher(metadataSink metadata.MetadataSink) *LocalFetcher {
	return &LocalFetcher{metadataSink: metadataSink}
}

func (l *LocalFetcher) Fetch(ctx context.Context, ref string) ([]byte, failure.ClassifiedError) {
	return l.read(ctx, "LocalFetcher.Fetch", ref, 0)
}

func (l *LocalFetcher) FetchPrefix(ctx context.Context, ref string, maxBytes int) ([]byte, failure.ClassifiedError) {
	if maxBytes <= 0 {
		return []byte{}, nil
	}
	return l.read(ctx, "LocalFetcher.FetchPrefix", ref, maxBytes)
}

func (l *LocalFetcher) ListChildren(ctx context.Context, ref string) ([]string, failure.ClassifiedError) {
	const callerMethod = "LocalFetcher.ListChildren"

	path, err := l.localPath(ctx, ref)
	if err != nil {
		l.recordError(callerMethod, ref, err)
		return nil, err
	}

	paths, fileErr := fileutil.ListDir(path)
	if fileErr != nil {
		mapped := mapFileError(fileErr)
		l.recordError(callerMethod, ref, mapped)
		return nil, mapped
	}

	children := make([]string, 0, len(paths))
	for _, p := range paths {
		children = append(children, urlutil.FilePathToURI(p))
	}
	return children, nil
}

func (l *LocalFetcher) read(ctx context.Context, callerMethod string, ref string, maxBytes int) ([]byte, failure.ClassifiedError) {
	startTime := time.Now()

	path, err := l.localPath(ctx, ref)
	if err != nil {
		l.recordError(callerMethod, ref, err)
		return nil, err
	}

	data, fileErr := fileutil.ReadPrefix(path, maxBytes)
	if fileErr != nil {
		mapped := mapFileError(fileErr)
		if !IsDirectory(mapped) {
			l.recordError(callerMethod, ref, mapped)
		}
		return nil, mapped
	}

	l.metadataSink.RecordFetch(metadata.SourceLocal, ref, 0, time.Since(startTime), len(data), 1)
	return data, nil
}

func (l *LocalFetcher) localPath(ctx context.Context, ref string) (string, *FetchError) {
	if ctx.Err() != nil {
		return "", &FetchError{Message: ctx.Err().Error(), Cause: ErrCauseCancelled}
	}
	path, ok := urlutil.URIToFilePath(ref)
	if !ok {
		return "", &FetchError{Message: "not a local reference: " + ref, Cause: ErrCauseInvalidReference}
	}
	return path, nil
}

func (l *LocalFetcher) recordError(callerMethod string, ref string, err *FetchError) {
	l.metadataSink.RecordError(
		time.Now(),
		"fetcher",
		callerMethod,
		mapFetchErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrRef, ref),
		},
	)
}

func mapFileError(err failure.ClassifiedError) *FetchError {
	var fileErr *fileutil.FileError
	if !errors.As(err, &fileErr) {
		return &FetchError{Message: err.Error(), Cause: ErrCauseNetworkFailure}
	}

	cause := ErrCauseReadResponseBodyError
	switch fileErr.Cause {
	case fileutil.ErrCauseNotFound:
		cause = ErrCauseNotFound
	case fileutil.ErrCauseIsDirectory:
		cause = ErrCauseIsDirectory
	case fileutil.ErrCauseNotDir:
		cause = ErrCauseNotDirectory
	case fileutil.ErrCausePermission:
		cause = ErrCauseRequestForbidden
	}
	return &FetchError{Message: fileErr.Message, Cause: cause}
}
