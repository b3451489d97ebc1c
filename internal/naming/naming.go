// Package naming derives the destination bucket and file name of an imported
// image. All functions are pure.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// BucketLayout is the Go time layout of a date bucket directory (YYYYMMDD).
const BucketLayout = "20060102"

// Target is the planned destination of one source image.
type Target struct {
	Bucket    string // date bucket name, e.g. 20230315
	BucketDir string // DestinationRoot/Bucket
	FileName  string // {date}_{num}.{ext}
	Path      string // BucketDir/FileName
}

// BucketName returns the date bucket for a capture timestamp.
func BucketName(t time.Time) string {
	return t.Format(BucketLayout)
}

// SequenceToken returns the last "_"-separated segment of a file's base name
// without its extension, or the whole name when there is no "_".
func SequenceToken(base string) string {
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.LastIndex(stem, "_"); i >= 0 {
		return stem[i+1:]
	}
	return stem
}

// Extension returns the lower-cased extension of base without its leading dot.
func Extension(base string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
}

// FileName returns the destination file name "{date}_{num}.{ext}".
func FileName(t time.Time, base string) string {
	return fmt.Sprintf("%s_%s.%s", BucketName(t), SequenceToken(base), Extension(base))
}

// Plan computes where srcPath lands under dstRoot.
func Plan(dstRoot, srcPath string, t time.Time) Target {
	base := filepath.Base(srcPath)
	bucket := BucketName(t)
	bucketDir := filepath.Join(dstRoot, bucket)
	name := FileName(t, base)

	return Target{
		Bucket:    bucket,
		BucketDir: bucketDir,
		FileName:  name,
		Path:      filepath.Join(bucketDir, name),
	}
}
