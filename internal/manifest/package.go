package manifest

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"github.com/open-pkg-tools/pkgsmith/internal/integrity"
	"github.com/open-pkg-tools/pkgsmith/internal/recipe"
)

// metadataPath is where the package metadata lives inside the artifact.
const metadataPath = ".pkgsmith/metadata.yaml"

// Metadata is the package descriptor embedded in the produced artifact.
type Metadata struct {
	Package   recipe.PackageMeta `yaml:"package"`
	Requires  recipe.Requires    `yaml:"requires,omitempty"`
	Changelog []recipe.Change    `yaml:"changelog,omitempty"`
	BuildID   string             `yaml:"buildId"`
	BuiltAt   time.Time          `yaml:"builtAt"`
	Files     []string           `yaml:"files"`
}

// WritePackage assembles the final artifact: a zstd-compressed tar of
// the manifest entries taken from the build root, with the metadata
// document as the first member. A sha256 sidecar is written next to
// the artifact so consumers can run the same integrity gate we do.
func WritePackage(artifactPath, buildRoot string, entries []string, meta Metadata) error {
	if meta.BuiltAt.IsZero() {
		meta.BuiltAt = time.Now().UTC()
	}

	out, err := os.Create(artifactPath)
	if err != nil {
		return fmt.Errorf("creating artifact %s: %w", artifactPath, err)
	}
	defer out.Close()

	zw, err := zstd.NewWriter(out)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	tw := tar.NewWriter(zw)

	if err := writeMetadata(tw, meta); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := writeEntry(tw, buildRoot, entry); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing tar writer: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing zstd writer: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing artifact %s: %w", artifactPath, err)
	}

	return writeDigestSidecar(artifactPath)
}

func writeMetadata(tw *tar.Writer, meta Metadata) error {
	data, err := yaml.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}
	hdr := &tar.Header{
		Name:    metadataPath,
		Mode:    0644,
		Size:    int64(len(data)),
		ModTime: meta.BuiltAt,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing metadata header: %w", err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

func writeEntry(tw *tar.Writer, buildRoot, entry string) error {
	src := filepath.Join(buildRoot, strings.TrimPrefix(entry, "/"))
	info, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	link := ""
	if info.Mode()&os.ModeSymlink != 0 {
		if link, err = os.Readlink(src); err != nil {
			return fmt.Errorf("readlink %s: %w", src, err)
		}
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return fmt.Errorf("tar header for %s: %w", src, err)
	}
	hdr.Name = strings.TrimPrefix(entry, "/")

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing header for %s: %w", entry, err)
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer f.Close()

	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("writing %s: %w", entry, err)
	}
	return nil
}

func writeDigestSidecar(artifactPath string) error {
	d, err := integrity.FileDigest(artifactPath)
	if err != nil {
		return fmt.Errorf("hashing artifact: %w", err)
	}
	line := fmt.Sprintf("%s  %s\n", d, filepath.Base(artifactPath))
	if err := os.WriteFile(artifactPath+".sha256", []byte(line), 0644); err != nil {
		return fmt.Errorf("writing digest sidecar: %w", err)
	}
	return nil
}
