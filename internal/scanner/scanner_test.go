package scanner

import (
	"path/filepath"
	"testing"

	"camera-downloader/internal/pathutil"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte(f), 0644))
	}
	return fs
}

func collect(t *testing.T, fs afero.Fs, root string) []string {
	t.Helper()
	var got []string
	for path, err := range Images(fs, root, pathutil.CaseInsensitivePattern(ImagePattern)) {
		require.NoError(t, err)
		got = append(got, path)
	}
	return got
}

func TestImagesRecursiveCaseInsensitive(t *testing.T) {
	fs := newTree(t,
		filepath.Join("src", "IMG_0001.jpg"),
		filepath.Join("src", "DCIM", "IMG_0002.JPG"),
		filepath.Join("src", "DCIM", "100CANON", "deep", "IMG_0003.Jpg"),
		filepath.Join("src", "DCIM", "MVI_0004.MOV"),
		filepath.Join("src", "notes.txt"),
		filepath.Join("src", "IMG_0005.jpeg"),
	)

	got := collect(t, fs, "src")

	assert.ElementsMatch(t, []string{
		filepath.Join("src", "IMG_0001.jpg"),
		filepath.Join("src", "DCIM", "IMG_0002.JPG"),
		filepath.Join("src", "DCIM", "100CANON", "deep", "IMG_0003.Jpg"),
	}, got)
}

func TestImagesSkipsDirectoriesNamedLikeImages(t *testing.T) {
	fs := newTree(t, filepath.Join("src", "album.jpg", "IMG_0001.jpg"))

	got := collect(t, fs, "src")

	assert.Equal(t, []string{filepath.Join("src", "album.jpg", "IMG_0001.jpg")}, got)
}

func TestImagesRestartable(t *testing.T) {
	fs := newTree(t,
		filepath.Join("src", "a", "IMG_01.jpg"),
		filepath.Join("src", "b", "IMG_02.jpg"),
	)
	seq := Images(fs, "src", pathutil.CaseInsensitivePattern(ImagePattern))

	var first, second []string
	for p, err := range seq {
		require.NoError(t, err)
		first = append(first, p)
	}
	for p, err := range seq {
		require.NoError(t, err)
		second = append(second, p)
	}

	assert.Len(t, first, 2)
	assert.ElementsMatch(t, first, second)
}

func TestImagesEarlyBreak(t *testing.T) {
	fs := newTree(t,
		filepath.Join("src", "IMG_01.jpg"),
		filepath.Join("src", "IMG_02.jpg"),
		filepath.Join("src", "IMG_03.jpg"),
	)

	n := 0
	for _, err := range Images(fs, "src", "*.jpg") {
		require.NoError(t, err)
		n++
		if n == 1 {
			break
		}
	}
	assert.Equal(t, 1, n)
}

func TestImagesMissingRoot(t *testing.T) {
	fs := afero.NewMemMapFs()

	var errs []error
	for path, err := range Images(fs, "missing", "*.jpg") {
		assert.Empty(t, path)
		errs = append(errs, err)
	}

	require.Len(t, errs, 1)
	assert.Error(t, errs[0])
}

func TestImagesInvalidPattern(t *testing.T) {
	fs := newTree(t, filepath.Join("src", "IMG_01.jpg"))

	var errs []error
	for _, err := range Images(fs, "src", "[") {
		errs = append(errs, err)
	}

	require.Len(t, errs, 1)
	assert.ErrorContains(t, errs[0], "invalid pattern")
}
