package extract

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/open-pkg-tools/pkgsmith/internal/utils/logger"
)

// Extract unpacks a verified source archive into destDir. The format
// is chosen from the file name. Callers must run the integrity gate
// before extraction; this package trusts its input bytes.
func Extract(archivePath, destDir string) error {
	log := logger.Logger()
	log.Infof("extracting %s to %s", filepath.Base(archivePath), destDir)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", destDir, err)
	}

	name := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return extractTarball(archivePath, destDir, decompressGzip)
	case strings.HasSuffix(name, ".tar.xz"), strings.HasSuffix(name, ".txz"):
		return extractTarball(archivePath, destDir, decompressXz)
	case strings.HasSuffix(name, ".tar.zst"):
		return extractTarball(archivePath, destDir, decompressZstd)
	case strings.HasSuffix(name, ".tar"):
		return extractTarball(archivePath, destDir, nil)
	case strings.HasSuffix(name, ".rpm"):
		return extractRPM(archivePath, destDir)
	default:
		return fmt.Errorf("unsupported archive format: %s", filepath.Base(archivePath))
	}
}

type decompressor func(io.Reader) (io.Reader, func(), error)

func decompressGzip(r io.Reader) (io.Reader, func(), error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	return gz, func() { gz.Close() }, nil
}

func decompressXz(r io.Reader) (io.Reader, func(), error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
	}
	return xr, func() {}, nil
}

func decompressZstd(r io.Reader) (io.Reader, func(), error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	return zr, func() { zr.Close() }, nil
}

func extractTarball(archivePath, destDir string, dec decompressor) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", archivePath, err)
	}
	defer f.Close()

	var r io.Reader = f
	if dec != nil {
		dr, closeFn, err := dec(f)
		if err != nil {
			return err
		}
		defer closeFn()
		r = dr
	}

	return untar(r, destDir)
}

func untar(r io.Reader, destDir string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		target, err := securePath(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("creating directory for %s: %w", target, err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return fmt.Errorf("creating file %s: %w", target, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("writing file %s: %w", target, err)
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("closing file %s: %w", target, err)
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("creating directory for %s: %w", target, err)
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil && !os.IsExist(err) {
				return fmt.Errorf("creating symlink %s: %w", target, err)
			}
		default:
			// hard links, devices etc. do not occur in source tarballs
			logger.Logger().Debugf("skipping tar entry %s (type %d)", hdr.Name, hdr.Typeflag)
		}
	}
}

// securePath joins an archive entry name onto destDir, rejecting
// entries that would escape it.
func securePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction directory", name)
	}
	return target, nil
}
