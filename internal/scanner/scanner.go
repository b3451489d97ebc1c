// Package scanner enumerates candidate image files under a source tree.
package scanner

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ImagePattern is the glob every image base name is matched against, before
// it is made case-insensitive.
const ImagePattern = "*.jpg"

var errStopped = errors.New("scanner: iteration stopped")

// Images returns a lazy sequence over every non-directory entry below root whose
// base name matches pattern. The walk is recursive with no depth limit.
//
// Each range over the sequence starts a fresh walk. Walk errors are yielded
// with an empty path; the affected directory is skipped and the walk goes on.
// Yield order follows the filesystem and must not be relied upon.
func Images(fs afero.Fs, root, pattern string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if _, err := filepath.Match(pattern, ""); err != nil {
			yield("", fmt.Errorf("invalid pattern %q: %w", pattern, err))
			return
		}

		err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				if !yield("", fmt.Errorf("walk %s: %w", path, err)) {
					return errStopped
				}
				return nil
			}
			if info.IsDir() {
				return nil
			}

			ok, _ := filepath.Match(pattern, info.Name())
			if !ok {
				return nil
			}
			if !yield(path, nil) {
				return errStopped
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopped) {
			yield("", err)
		}
	}
}
