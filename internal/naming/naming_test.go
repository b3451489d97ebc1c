package naming

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006:01:02 15:04:05", s)
	require.NoError(t, err)
	return ts
}

func TestBucketName(t *testing.T) {
	assert.Equal(t, "20230315", BucketName(mustParse(t, "2023:03:15 14:22:01")))
	assert.Equal(t, "20220101", BucketName(mustParse(t, "2022:01:01 00:00:00")))
	assert.Equal(t, "19991231", BucketName(mustParse(t, "1999:12:31 23:59:59")))
}

func TestSequenceToken(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"IMG_0421.jpg", "0421"},
		{"DSC100.jpg", "DSC100"},
		{"P_2023_007.JPG", "007"},
		{"IMG_.jpg", ""},
		{"IMG_ABC.jpg", "ABC"},
		{"no_ext", "ext"},
		{"IMG_0001.tar.jpg", "0001.tar"},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			assert.Equal(t, tt.want, SequenceToken(tt.base))
		})
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "jpg", Extension("IMG_0421.JPG"))
	assert.Equal(t, "jpg", Extension("IMG_0421.Jpg"))
	assert.Equal(t, "", Extension("IMG_0421"))
}

func TestFileName(t *testing.T) {
	ts := mustParse(t, "2023:03:15 14:22:01")

	assert.Equal(t, "20230315_0421.jpg", FileName(ts, "IMG_0421.jpg"))
	assert.Equal(t, "20230315_0421.jpg", FileName(ts, "IMG_0421.JPG"))
	assert.Equal(t, "20230315_DSC100.jpg", FileName(ts, "DSC100.jpg"))
}

func TestPlan(t *testing.T) {
	dst := filepath.Join("archive", "photos")
	src := filepath.Join("card", "DCIM", "IMG_0421.jpg")

	got := Plan(dst, src, mustParse(t, "2023:03:15 14:22:01"))

	assert.Equal(t, Target{
		Bucket:    "20230315",
		BucketDir: filepath.Join(dst, "20230315"),
		FileName:  "20230315_0421.jpg",
		Path:      filepath.Join(dst, "20230315", "20230315_0421.jpg"),
	}, got)
}

func TestPlanIsDeterministic(t *testing.T) {
	ts := mustParse(t, "2022:01:01 08:00:00")
	a := Plan("dst", "src/a/IMG_01.jpg", ts)
	b := Plan("dst", "src/a/IMG_01.jpg", ts)
	assert.Equal(t, a, b)
}
