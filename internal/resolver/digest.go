package resolver

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"sort"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// hashTree fingerprints a source tree: sha256 over every file path and its
// contents, in sorted path order, so the digest is independent of walk
// order and filesystem backend.
func hashTree(fsys billy.Filesystem) (string, error) {
	var paths []string
	err := util.Walk(fsys, ".", func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(paths)

	h := sha256.New()
	for _, path := range paths {
		if err := hashFile(h, fsys, path); err != nil {
			return "", err
		}
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}

func hashFile(h io.Writer, fsys billy.Filesystem, path string) error {
	io.WriteString(h, path)
	h.Write([]byte{0})

	f, err := fsys.Open(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(h, f); err != nil {
		f.Close()
		return err
	}
	h.Write([]byte{0})
	return f.Close()
}
