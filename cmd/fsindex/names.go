package main

import (
	"encoding/hex"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/bamsammich/fsindex/internal/record"
)

type artifacts struct {
	db        string
	accessLog string
}

// artifactNames derives the default output file names for a scan of root.
// The leaf name keeps them readable; the digest keeps scans of two roots
// with the same leaf apart.
func artifactNames(root, dir string) artifacts {
	base := artifactBase(root)
	return artifacts{
		db:        filepath.Join(dir, base+"_metadata.db"),
		accessLog: filepath.Join(dir, base+"_access_errors.log"),
	}
}

func artifactBase(root string) string {
	leaf, _, ok := record.SplitPath(root)
	if !ok {
		leaf = "root"
	}
	sum := blake3.Sum256([]byte(filepath.Clean(root)))
	return leaf + "-" + hex.EncodeToString(sum[:8])
}
