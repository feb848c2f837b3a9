package resolver

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"resty.dev/v3"
)

// URL schemes for tarball inputs served over HTTP(S).
const (
	SchemeHTTPS = "https"
	SchemeHTTP  = "http"
)

// DefaultFetchTimeout bounds a single tarball download.
const DefaultFetchTimeout = 2 * time.Minute

// HTTPSFetcher serves `https:`/`http:` inputs by downloading a gzipped
// source tarball and extracting it into an in-memory tree. When the
// archive wraps everything in a single top-level directory, as forge
// tarballs do, the tree is rooted inside it.
type HTTPSFetcher struct {
	client *resty.Client
}

// NewHTTPSFetcher creates a fetcher with its own HTTP client. Callers own
// the fetcher's lifecycle and must Close it.
func NewHTTPSFetcher(timeout time.Duration) *HTTPSFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/gzip")
	return &HTTPSFetcher{client: client}
}

// Close releases the underlying HTTP client.
func (f *HTTPSFetcher) Close() error {
	return f.client.Close()
}

// Fetch downloads and extracts the tarball behind url.
func (f *HTTPSFetcher) Fetch(ctx context.Context, url string) (billy.Filesystem, error) {
	res, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("unexpected status %s downloading %s", res.Status(), url)
	}

	dest := memfs.New()
	if err := extractTarGz(res.Bytes(), dest); err != nil {
		return nil, fmt.Errorf("failed to extract tarball from %s: %w", url, err)
	}
	return stripArchiveRoot(dest)
}

// extractTarGz unpacks a gzipped tarball into dest. Entries that would
// escape the archive root are rejected; entry kinds other than files and
// directories are skipped.
func extractTarGz(data []byte, dest billy.Filesystem) error {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar stream: %w", err)
		}

		name := path.Clean(hdr.Name)
		if name == "." {
			continue
		}
		if path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
			return fmt.Errorf("tar entry escapes the archive root: %q", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := dest.MkdirAll(name, fs.FileMode(hdr.Mode)); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", name, err)
			}
		case tar.TypeReg:
			if err := writeEntry(dest, name, tr); err != nil {
				return fmt.Errorf("failed to write file %s: %w", name, err)
			}
		}
	}
}

func writeEntry(dest billy.Filesystem, name string, r io.Reader) error {
	f, err := dest.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// stripArchiveRoot descends into the archive's single top-level directory,
// if that is all the archive contains.
func stripArchiveRoot(fsys billy.Filesystem) (billy.Filesystem, error) {
	entries, err := fsys.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to list extracted tree: %w", err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return fsys.Chroot(entries[0].Name())
	}
	return fsys, nil
}
