// Package bundle packs canonicalized .dbd definition files into a
// reproducible tar.xz archive and reads them back.
package bundle

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/dbdef/core/dbd"
)

// Create walks srcDir for .dbd files, rewrites each to canonical form, and
// packs them into a tar.xz archive at dstPath. Entry names are the paths
// relative to srcDir. Timestamps are zeroed and entries are sorted, so the
// same definitions always produce the same archive. Returns the number of
// files packed.
func Create(srcDir, dstPath string) (int, error) {
	var paths []string
	err := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".dbd") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk %s: %w", srcDir, err)
	}
	sort.Strings(paths)

	outFile, err := os.Create(dstPath)
	if err != nil {
		return 0, fmt.Errorf("create bundle file: %w", err)
	}
	defer outFile.Close()

	xw, err := xz.NewWriter(outFile)
	if err != nil {
		return 0, fmt.Errorf("xz writer: %w", err)
	}
	tw := tar.NewWriter(xw)

	for _, path := range paths {
		f, err := dbd.LoadFile(path)
		if err != nil {
			return 0, fmt.Errorf("canonicalize %s: %w", path, err)
		}
		canonical := []byte(f.Emit())

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return 0, err
		}

		header := &tar.Header{
			Name:    filepath.ToSlash(relPath),
			Mode:    0644,
			Size:    int64(len(canonical)),
			ModTime: time.Unix(0, 0),
		}
		if err := tw.WriteHeader(header); err != nil {
			return 0, fmt.Errorf("write header for %s: %w", relPath, err)
		}
		if _, err := tw.Write(canonical); err != nil {
			return 0, fmt.Errorf("write %s: %w", relPath, err)
		}
	}

	if err := tw.Close(); err != nil {
		return 0, fmt.Errorf("close tar: %w", err)
	}
	if err := xw.Close(); err != nil {
		return 0, fmt.Errorf("close xz: %w", err)
	}
	return len(paths), nil
}

// Visitor receives one bundle entry. Returning stop ends iteration early.
type Visitor func(name string, contents []byte) (stop bool, err error)

// Iterate walks through all entries of a bundle, calling the visitor for
// each.
func Iterate(path string, visitor Visitor) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return fmt.Errorf("xz reader: %w", err)
	}

	tr := tar.NewReader(xr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}

		contents, err := io.ReadAll(tr)
		if err != nil {
			return fmt.Errorf("read %s: %w", header.Name, err)
		}

		stop, err := visitor(header.Name, contents)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}
