package godatabend

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestCompressionOf(t *testing.T) {
	testcases := []struct {
		contentType string
		expected    string
	}{
		{"application/gzip", "GZIP"},
		{"application/x-gzip", "GZIP"},
		{"application/x-bzip2", "BZIP2"},
		{"application/zstd", "ZSTD"},
		{"application/x-xz", "XZ"},
		{"application/vnd.apache.parquet", "PARQUET"},
		{"text/plain; charset=utf-8", ""},
		{"garbage", ""},
	}
	for _, test := range testcases {
		ct := compressionOf(test.contentType)
		if test.expected == "" {
			assertNilE(t, ct, test.contentType)
			continue
		}
		assertNotNilF(t, ct, test.contentType)
		assertEqualE(t, ct.name, test.expected)
	}
}

func TestFileSourceReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	assertNilF(t, os.WriteFile(path, []byte("hello"), 0600))
	open := FileSource(path)
	for i := 0; i < 2; i++ {
		rc, err := open()
		assertNilF(t, err)
		b, err := io.ReadAll(rc)
		assertNilF(t, err)
		assertNilF(t, rc.Close())
		assertEqualE(t, string(b), "hello")
	}
}

func TestInspectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	assertNilF(t, os.WriteFile(path, []byte("hello world\n"), 0600))
	info, err := inspectFile(path)
	assertNilF(t, err)
	assertEqualE(t, info.size, int64(12))
	assertHasPrefixE(t, info.contentType, "text/plain")
	assertNilE(t, info.compressionType)
	assertHasPrefixE(t, DetectContentType(path), "text/plain")
	assertEqualE(t, DetectContentType(filepath.Join(t.TempDir(), "missing")), "")
}

func TestBaseName(t *testing.T) {
	assertEqualE(t, baseName("/tmp/data.csv"), "data.csv")
	assertEqualE(t, baseName("/tmp/"), "")
	assertEqualE(t, baseName("."), "")
}

func TestExpandUser(t *testing.T) {
	assertEqualE(t, expandUser("/abs/path"), "/abs/path")
	assertEqualE(t, expandUser("relative"), "relative")
	home := expandUser("~")
	assertEqualE(t, expandUser("~/data.csv"), filepath.Join(home, "data.csv"))
}
