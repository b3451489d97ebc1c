// Package pathutil holds the small filesystem helpers shared by the import
// pipeline.
package pathutil

import (
	"strings"
	"unicode"

	"github.com/spf13/afero"
)

// DirPerm is the permission used for every directory the importer creates.
const DirPerm = 0755

// EnsureDirectory creates path and any missing parents. An existing directory
// is not an error. It returns path so calls can be chained.
func EnsureDirectory(fs afero.Fs, path string) (string, error) {
	if err := fs.MkdirAll(path, DirPerm); err != nil {
		return path, err
	}
	return path, nil
}

// ValidateSourceDirectory reports whether path exists and is a directory.
func ValidateSourceDirectory(fs afero.Fs, path string) bool {
	ok, err := afero.DirExists(fs, path)
	return err == nil && ok
}

// CaseInsensitivePattern rewrites a glob pattern so that every letter matches
// either case: "*.jpg" becomes "*.[jJ][pP][gG]".
func CaseInsensitivePattern(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern) * 4)
	for _, r := range pattern {
		if !unicode.IsLetter(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('[')
		b.WriteRune(unicode.ToLower(r))
		b.WriteRune(unicode.ToUpper(r))
		b.WriteByte(']')
	}
	return b.String()
}
