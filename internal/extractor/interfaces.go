package extractor

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// DateTimeTag is the numeric EXIF tag (IFD0 DateTime) holding the capture
// timestamp. exiftool reports the same tag as ModifyDate.
const DateTimeTag uint16 = 0x0132

// CaptureLayout is the layout of the DateTime tag value.
const CaptureLayout = "2006:01:02 15:04:05"

// Reader names accepted by New.
const (
	ReaderGoExif   = "goexif"
	ReaderExiftool = "exiftool"
)

// DateExtractor is the interface for reading the capture timestamp of an image.
type DateExtractor interface {
	ExtractDate(filePath string) (time.Time, error)
	Name() string
	Close() error
}

// Failure kinds. Every error returned by an extractor matches exactly one of
// them through errors.Is.
var (
	ErrDecode          = errors.New("not a decodable JPEG image")
	ErrMissingMetadata = errors.New("no EXIF metadata")
	ErrMissingField    = errors.New("capture time tag not present")
	ErrFormat          = errors.New("malformed capture time")
)

// Error describes why a capture timestamp could not be read from a file.
type Error struct {
	Path string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(path string, kind, err error) *Error {
	return &Error{Path: path, Kind: kind, Err: err}
}

// New returns the extractor registered under reader. The exiftool reader
// works on OS paths only and ignores fs.
func New(reader string, fs afero.Fs, logger *logrus.Logger) (DateExtractor, error) {
	switch reader {
	case "", ReaderGoExif:
		return NewEXIFExtractor(fs, logger), nil
	case ReaderExiftool:
		return NewExiftoolExtractor(logger)
	default:
		return nil, fmt.Errorf("unknown metadata reader %q (valid: %s, %s)", reader, ReaderGoExif, ReaderExiftool)
	}
}

// parseCaptureTime parses a DateTime tag value.
func parseCaptureTime(path, raw string) (time.Time, error) {
	t, err := time.Parse(CaptureLayout, raw)
	if err != nil {
		return time.Time{}, newError(path, ErrFormat, fmt.Errorf("%q: %w", raw, err))
	}
	return t, nil
}
