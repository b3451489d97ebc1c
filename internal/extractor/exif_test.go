package extractor

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"camera-downloader/internal/testutil"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func TestEXIFExtractorExtractDate(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.WriteFile(t, fs, "IMG_0421.jpg", testutil.JPEGWithDateTime(t, "2023:03:15 14:22:01"))

	got, err := NewEXIFExtractor(fs, quietLogger()).ExtractDate("IMG_0421.jpg")

	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 3, 15, 14, 22, 1, 0, time.UTC), got)
}

func TestEXIFExtractorFailures(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
		kind error
	}{
		{
			name: "not an image",
			data: func(t *testing.T) []byte { return []byte("definitely not a jpeg") },
			kind: ErrDecode,
		},
		{
			name: "no exif segment",
			data: func(t *testing.T) []byte { return testutil.PlainJPEG(t) },
			kind: ErrMissingMetadata,
		},
		{
			name: "no datetime tag",
			data: func(t *testing.T) []byte { return testutil.JPEGWithTag(t, testutil.MakeTag, "Canon") },
			kind: ErrMissingField,
		},
		{
			name: "dashed datetime",
			data: func(t *testing.T) []byte { return testutil.JPEGWithDateTime(t, "2023-03-15 14:22:01") },
			kind: ErrFormat,
		},
		{
			name: "date only",
			data: func(t *testing.T) []byte { return testutil.JPEGWithDateTime(t, "2023:03:15") },
			kind: ErrFormat,
		},
		{
			name: "short garbage",
			data: func(t *testing.T) []byte { return testutil.JPEGWithDateTime(t, "x") },
			kind: ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			path := filepath.Join("src", "IMG_0001.jpg")
			testutil.WriteFile(t, fs, path, tt.data(t))

			_, err := NewEXIFExtractor(fs, quietLogger()).ExtractDate(path)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var xerr *Error
			require.True(t, errors.As(err, &xerr))
			assert.Equal(t, path, xerr.Path)
			assert.Contains(t, err.Error(), path)

			for _, other := range []error{ErrDecode, ErrMissingMetadata, ErrMissingField, ErrFormat} {
				if other != tt.kind {
					assert.NotErrorIs(t, err, other)
				}
			}
		})
	}
}

func TestEXIFExtractorMissingFile(t *testing.T) {
	_, err := NewEXIFExtractor(afero.NewMemMapFs(), quietLogger()).ExtractDate("missing.jpg")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestEXIFExtractorOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "IMG_01.JPG")
	fs := afero.NewOsFs()
	testutil.WriteFile(t, fs, path, testutil.JPEGWithDateTime(t, "2022:01:01 09:30:00"))

	got, err := NewEXIFExtractor(fs, quietLogger()).ExtractDate(path)

	require.NoError(t, err)
	assert.Equal(t, "2022-01-01 09:30:00", got.Format(time.DateTime))
}

func TestNew(t *testing.T) {
	fs := afero.NewMemMapFs()

	ex, err := New("", fs, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, ReaderGoExif, ex.Name())
	assert.NoError(t, ex.Close())

	ex, err = New(ReaderGoExif, fs, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &EXIFExtractor{}, ex)

	_, err = New("pillow", fs, quietLogger())
	assert.ErrorContains(t, err, "unknown metadata reader")
}

func TestErrorMessage(t *testing.T) {
	err := newError("a.jpg", ErrMissingField, nil)
	assert.Equal(t, "a.jpg: capture time tag not present", err.Error())
	assert.ErrorIs(t, err, ErrMissingField)

	err = newError("a.jpg", ErrFormat, errors.New("bad"))
	assert.Equal(t, "a.jpg: malformed capture time: bad", err.Error())
}
