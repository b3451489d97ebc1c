package extractor

import (
	"errors"
	"fmt"
	"time"

	"github.com/barasher/go-exiftool"
	"github.com/sirupsen/logrus"
)

// exiftool tag names used by ExiftoolExtractor.
const (
	exiftoolDateTimeKey  = "ModifyDate" // IFD0 0x0132
	exiftoolFileTypeKey  = "FileType"
	exiftoolByteOrderKey = "ExifByteOrder"
)

// ExiftoolExtractor reads the capture timestamp through a long-running
// exiftool process. It requires the exiftool binary on PATH.
type ExiftoolExtractor struct {
	et     *exiftool.Exiftool
	logger *logrus.Logger
}

// NewExiftoolExtractor starts exiftool and returns an extractor using it.
// Callers must Close it.
func NewExiftoolExtractor(logger *logrus.Logger) (*ExiftoolExtractor, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("failed to start exiftool: %w", err)
	}
	return &ExiftoolExtractor{et: et, logger: logger}, nil
}

// Name returns the reader name.
func (e *ExiftoolExtractor) Name() string {
	return ReaderExiftool
}

// Close stops the exiftool process.
func (e *ExiftoolExtractor) Close() error {
	return e.et.Close()
}

// ExtractDate returns the DateTime tag of a JPEG file as reported by exiftool.
func (e *ExiftoolExtractor) ExtractDate(filePath string) (time.Time, error) {
	infos := e.et.ExtractMetadata(filePath)
	if len(infos) == 0 {
		return time.Time{}, newError(filePath, ErrDecode, errors.New("exiftool returned no metadata"))
	}

	fm := infos[0]
	if fm.Err != nil {
		return time.Time{}, newError(filePath, ErrDecode, fm.Err)
	}

	fileType, err := fm.GetString(exiftoolFileTypeKey)
	if err != nil || fileType != "JPEG" {
		return time.Time{}, newError(filePath, ErrDecode, fmt.Errorf("file type %q", fileType))
	}

	if _, ok := fm.Fields[exiftoolByteOrderKey]; !ok {
		return time.Time{}, newError(filePath, ErrMissingMetadata, nil)
	}

	raw, err := fm.GetString(exiftoolDateTimeKey)
	if errors.Is(err, exiftool.ErrKeyNotFound) {
		return time.Time{}, newError(filePath, ErrMissingField, fmt.Errorf("tag 0x%04x", DateTimeTag))
	}
	if err != nil {
		return time.Time{}, newError(filePath, ErrFormat, err)
	}

	t, err := parseCaptureTime(filePath, raw)
	if err != nil {
		return time.Time{}, err
	}

	e.logger.Debugf("Extracted %s via exiftool: %v for file %s", exiftoolDateTimeKey, t, filePath)
	return t, nil
}
