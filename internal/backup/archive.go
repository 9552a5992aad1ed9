package backup

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// BuildArchive writes a zstd-compressed tar of every regular file in srcDir
// (non-recursive; exports are flat) to w.
func BuildArchive(srcDir string, w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("archive: zstd writer: %w", err)
	}
	tw := tar.NewWriter(zw)

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("archive: read dir: %w", err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := addFile(tw, srcDir, entry.Name()); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("archive: close tar: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: close zstd: %w", err)
	}
	return nil
}

func addFile(tw *tar.Writer, dir, name string) error {
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("archive: stat %s: %w", name, err)
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("archive: header %s: %w", name, err)
	}
	hdr.Name = name
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("archive: write header %s: %w", name, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", name, err)
	}
	defer f.Close()

	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("archive: copy %s: %w", name, err)
	}
	return nil
}

// ExtractArchive unpacks a zstd-compressed tar produced by BuildArchive into
// dstDir. Entries that would escape dstDir are rejected.
func ExtractArchive(r io.Reader, dstDir string) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("extract: zstd reader: %w", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("extract: read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name := filepath.Clean(hdr.Name)
		if strings.HasPrefix(name, "..") || filepath.IsAbs(name) {
			return fmt.Errorf("extract: entry %q escapes destination", hdr.Name)
		}

		dst := filepath.Join(dstDir, name)
		if err := writeFile(dst, tr); err != nil {
			return err
		}
	}
}

func writeFile(dst string, r io.Reader) error {
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("extract: create %s: %w", dst, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("extract: write %s: %w", dst, err)
	}
	return nil
}
