package godatabend

import (
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// SourceOpener opens a fresh reader over an upload payload. It is called once
// per attempt so a retried upload starts from the first byte.
type SourceOpener func() (io.ReadCloser, error)

// FileSource returns a SourceOpener over the file at path.
func FileSource(path string) SourceOpener {
	return func() (io.ReadCloser, error) {
		return os.Open(expandUser(path))
	}
}

// fileInfo describes a local upload payload.
type fileInfo struct {
	path            string
	size            int64
	contentType     string
	compressionType *compressionType
}

// inspectFile stats the file and detects its content type from the leading bytes.
func inspectFile(path string) (*fileInfo, error) {
	path = expandUser(path)
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, err
	}
	info := &fileInfo{
		path:        path,
		size:        stat.Size(),
		contentType: mime.String(),
	}
	info.compressionType = compressionOf(mime.String())
	if info.compressionType != nil {
		logger.Debugf("file %v is %v compressed", baseName(path), info.compressionType.name)
	}
	return info, nil
}

// compressionOf maps a detected content type such as "application/gzip" to
// its compression type.
func compressionOf(contentType string) *compressionType {
	mediaType, _, _ := strings.Cut(contentType, ";")
	_, subType, found := strings.Cut(strings.TrimSpace(mediaType), "/")
	if !found {
		return nil
	}
	return lookupByMimeSubType(subType)
}

func baseName(path string) string {
	base := filepath.Base(path)
	if base == "." || base == "/" {
		return ""
	}
	if len(base) > 1 && (path[len(path)-1:] == "." || path[len(path)-1:] == "/") {
		return ""
	}
	return base
}

func expandUser(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	usr, err := user.Current()
	if err != nil {
		return path
	}
	if path == "~" {
		return usr.HomeDir
	}
	return filepath.Join(usr.HomeDir, path[2:])
}

// DetectContentType returns the content type detected from the leading bytes
// of the file at path, or "" if it cannot be read.
func DetectContentType(path string) string {
	mime, err := mimetype.DetectFile(expandUser(path))
	if err != nil {
		return ""
	}
	return mime.String()
}
