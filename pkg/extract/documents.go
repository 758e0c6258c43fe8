package extract

import (
	"context"
	stderrors "errors"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/matzehuels/orgtower/pkg/errors"
)

const (
	readAttempts = 3
	readDelay    = 50 * time.Millisecond
)

// readFile is replaced in tests.
var readFile = os.ReadFile

// ReadDocuments reads the files at paths. It fails with FILE_NOT_FOUND for
// a missing file and INVALID_INPUT when no paths are given or a file is
// empty, before any extraction is attempted. Interrupted, busy or timed-out
// reads are retried with [Retry].
func ReadDocuments(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no documents given")
	}
	docs := make([]string, 0, len(paths))
	for _, p := range paths {
		var data []byte
		err := Retry(ctx, readAttempts, readDelay, func() error {
			var err error
			data, err = readFile(p)
			if transientRead(err) {
				return &RetryableError{Err: err}
			}
			return err
		})
		switch {
		case os.IsNotExist(err):
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "document %s not found", p)
		case err != nil:
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read document %s", p)
		case strings.TrimSpace(string(data)) == "":
			return nil, errors.New(errors.ErrCodeInvalidInput, "document %s is empty", p)
		}
		docs = append(docs, string(data))
	}
	return docs, nil
}

func transientRead(err error) bool {
	if err == nil {
		return false
	}
	return os.IsTimeout(err) ||
		stderrors.Is(err, syscall.EINTR) ||
		stderrors.Is(err, syscall.EAGAIN) ||
		stderrors.Is(err, syscall.EBUSY)
}
