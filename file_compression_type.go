package godatabend

import (
	"strings"
)

type compressionType struct {
	name          string
	fileExtension string
	mimeType      string
	mimeSubtypes  []string
	isSupported   bool
}

var compressionTypes = map[string]compressionType{
	"GZIP": {
		"GZIP",
		".gz",
		"application",
		[]string{"gzip", "x-gzip"},
		true,
	},
	"DEFLATE": {
		"DEFLATE",
		".deflate",
		"application",
		[]string{"zlib", "deflate"},
		true,
	},
	"BZIP2": {
		"BZIP2",
		".bz2",
		"application",
		[]string{"bzip2", "x-bzip2", "x-bz2", "x-bzip", "bz2"},
		true,
	},
	"XZ": {
		"XZ",
		".xz",
		"application",
		[]string{"xz", "x-xz"},
		true,
	},
	"ZSTD": {
		"ZSTD",
		".zst",
		"application",
		[]string{"zstd", "x-zstd"},
		true,
	},
	"BROTLI": {
		"BROTLI",
		".br",
		"application",
		[]string{"br", "x-br"},
		true,
	},
	"LZO": {
		"LZO",
		".lzo",
		"application",
		[]string{"lzo", "x-lzo"},
		false,
	},
	"PARQUET": {
		"PARQUET",
		".parquet",
		"application",
		[]string{"parquet", "vnd.apache.parquet"},
		true,
	},
	"ORC": {
		"ORC",
		".orc",
		"application",
		[]string{"orc"},
		true,
	},
}

var subTypeToCompression = func() map[string]compressionType {
	m := make(map[string]compressionType)
	for _, meta := range compressionTypes {
		for _, subType := range meta.mimeSubtypes {
			m[subType] = meta
		}
	}
	return m
}()

// lookupByMimeSubType returns nil when the subtype is not a known compression.
func lookupByMimeSubType(mimeSubType string) *compressionType {
	if val, ok := subTypeToCompression[strings.ToLower(mimeSubType)]; ok {
		return &val
	}
	return nil
}
