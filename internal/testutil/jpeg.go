// Package testutil builds image fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// DateTimeTag mirrors the IFD0 DateTime tag id.
const DateTimeTag uint16 = 0x0132

// MakeTag is the IFD0 Make tag id, handy for files without a DateTime tag.
const MakeTag uint16 = 0x010F

// PlainJPEG returns a small valid JPEG with no EXIF segment.
func PlainJPEG(t testing.TB) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 16)
	}
	img.Set(0, 0, color.Gray{Y: 255})

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// JPEGWithTag returns a valid JPEG whose EXIF IFD0 holds one ASCII tag.
func JPEGWithTag(t testing.TB, id uint16, value string) []byte {
	t.Helper()
	plain := PlainJPEG(t)

	out := make([]byte, 0, len(plain)+64+len(value))
	out = append(out, plain[:2]...) // SOI
	out = append(out, exifSegment(id, value)...)
	out = append(out, plain[2:]...)
	return out
}

// JPEGWithDateTime returns a valid JPEG whose DateTime tag is value,
// e.g. "2023:03:15 14:22:01".
func JPEGWithDateTime(t testing.TB, value string) []byte {
	t.Helper()
	return JPEGWithTag(t, DateTimeTag, value)
}

// WriteFile writes data to path on fs, creating parent directories.
func WriteFile(t testing.TB, fs afero.Fs, path string, data []byte) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, data, 0644))
}

// exifSegment encodes a big-endian APP1 EXIF segment with a single IFD0
// entry of type ASCII.
func exifSegment(id uint16, value string) []byte {
	val := append([]byte(value), 0)

	var tif bytes.Buffer
	tif.WriteString("MM\x00\x2a")
	be32(&tif, 8) // IFD0 offset
	be16(&tif, 1) // entry count
	be16(&tif, id)
	be16(&tif, 2) // ASCII
	be32(&tif, uint32(len(val)))
	if len(val) <= 4 {
		inline := make([]byte, 4)
		copy(inline, val)
		tif.Write(inline)
	} else {
		be32(&tif, 8+2+12+4)
	}
	be32(&tif, 0) // no next IFD
	if len(val) > 4 {
		tif.Write(val)
	}

	payload := append([]byte("Exif\x00\x00"), tif.Bytes()...)
	size := len(payload) + 2

	seg := []byte{0xFF, 0xE1, byte(size >> 8), byte(size)}
	return append(seg, payload...)
}

func be16(b *bytes.Buffer, v uint16) {
	_ = binary.Write(b, binary.BigEndian, v)
}

func be32(b *bytes.Buffer, v uint32) {
	_ = binary.Write(b, binary.BigEndian, v)
}
