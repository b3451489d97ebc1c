package extractor

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"io"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// EXIFExtractor reads the capture timestamp with the rwcarlsen/goexif library.
type EXIFExtractor struct {
	fs     afero.Fs
	logger *logrus.Logger
}

// NewEXIFExtractor returns a new EXIFExtractor reading files from fs.
func NewEXIFExtractor(fs afero.Fs, logger *logrus.Logger) *EXIFExtractor {
	return &EXIFExtractor{
		fs:     fs,
		logger: logger,
	}
}

// Name returns the reader name.
func (e *EXIFExtractor) Name() string {
	return ReaderGoExif
}

// Close is a no-op; the extractor holds no resources between files.
func (e *EXIFExtractor) Close() error {
	return nil
}

// ExtractDate returns the DateTime tag of a JPEG file. There is no fallback
// source: a file without a usable tag yields an *Error.
func (e *EXIFExtractor) ExtractDate(filePath string) (time.Time, error) {
	file, err := e.fs.Open(filePath)
	if err != nil {
		return time.Time{}, newError(filePath, ErrDecode, err)
	}
	defer file.Close()

	_, format, err := image.DecodeConfig(file)
	if err != nil {
		return time.Time{}, newError(filePath, ErrDecode, err)
	}
	if format != "jpeg" {
		return time.Time{}, newError(filePath, ErrDecode, fmt.Errorf("unexpected format %q", format))
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return time.Time{}, newError(filePath, ErrDecode, err)
	}

	x, err := exif.Decode(file)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return time.Time{}, newError(filePath, ErrMissingMetadata, err)
	}
	if err != nil {
		e.logger.Debugf("Ignoring non-critical EXIF error in %s: %v", filePath, err)
	}

	tag := lookupTag(x, DateTimeTag)
	if tag == nil {
		return time.Time{}, newError(filePath, ErrMissingField, fmt.Errorf("tag 0x%04x", DateTimeTag))
	}

	raw, err := tag.StringVal()
	if err != nil {
		return time.Time{}, newError(filePath, ErrFormat, err)
	}

	t, err := parseCaptureTime(filePath, raw)
	if err != nil {
		return time.Time{}, err
	}

	e.logger.Debugf("Extracted DateTime from EXIF: %v for file %s", t, filePath)
	return t, nil
}

// lookupTag finds a tag by numeric id in the primary image directory.
func lookupTag(x *exif.Exif, id uint16) *tiff.Tag {
	if x == nil || x.Tiff == nil || len(x.Tiff.Dirs) == 0 {
		return nil
	}
	for _, tag := range x.Tiff.Dirs[0].Tags {
		if tag.Id == id {
			return tag
		}
	}
	return nil
}
