package extract

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

type archiveEntry struct {
	name    string
	content string
	mode    int64
	dir     bool
}

func writeTar(t *testing.T, entries []archiveEntry) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: e.mode}
		if e.dir {
			hdr.Typeflag = tar.TypeDir
		} else {
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.content))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("writing tar header: %v", err)
		}
		if !e.dir {
			if _, err := tw.Write([]byte(e.content)); err != nil {
				t.Fatalf("writing tar content: %v", err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar: %v", err)
	}
	return &buf
}

var sourceTree = []archiveEntry{
	{name: "cython-3.0.11/", mode: 0755, dir: true},
	{name: "cython-3.0.11/setup.py", content: "# setup", mode: 0644},
	{name: "cython-3.0.11/bin/cython", content: "#!/usr/bin/env python3", mode: 0755},
}

func checkExtracted(t *testing.T, destDir string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(destDir, "cython-3.0.11", "setup.py"))
	if err != nil {
		t.Fatalf("extracted file missing: %v", err)
	}
	if string(data) != "# setup" {
		t.Errorf("extracted content = %q", data)
	}

	info, err := os.Stat(filepath.Join(destDir, "cython-3.0.11", "bin", "cython"))
	if err != nil {
		t.Fatalf("nested file missing: %v", err)
	}
	if info.Mode().Perm()&0100 == 0 {
		t.Error("executable bit should survive extraction")
	}
}

func TestExtractTarGz(t *testing.T) {
	raw := writeTar(t, sourceTree)

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	if _, err := gw.Write(raw.Bytes()); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	gw.Close()

	archive := filepath.Join(t.TempDir(), "cython-3.0.11.tar.gz")
	if err := os.WriteFile(archive, gzBuf.Bytes(), 0644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}

	destDir := t.TempDir()
	if err := Extract(archive, destDir); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	checkExtracted(t, destDir)
}

func TestExtractTarXz(t *testing.T) {
	raw := writeTar(t, sourceTree)

	var xzBuf bytes.Buffer
	xw, err := xz.NewWriter(&xzBuf)
	if err != nil {
		t.Fatalf("xz writer: %v", err)
	}
	if _, err := xw.Write(raw.Bytes()); err != nil {
		t.Fatalf("xz write: %v", err)
	}
	xw.Close()

	archive := filepath.Join(t.TempDir(), "cython-3.0.11.tar.xz")
	if err := os.WriteFile(archive, xzBuf.Bytes(), 0644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}

	destDir := t.TempDir()
	if err := Extract(archive, destDir); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	checkExtracted(t, destDir)
}

func TestExtractTarZst(t *testing.T) {
	raw := writeTar(t, sourceTree)

	var zstBuf bytes.Buffer
	zw, err := zstd.NewWriter(&zstBuf)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	if _, err := zw.Write(raw.Bytes()); err != nil {
		t.Fatalf("zstd write: %v", err)
	}
	zw.Close()

	archive := filepath.Join(t.TempDir(), "cython-3.0.11.tar.zst")
	if err := os.WriteFile(archive, zstBuf.Bytes(), 0644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}

	destDir := t.TempDir()
	if err := Extract(archive, destDir); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	checkExtracted(t, destDir)
}

func TestExtractPlainTar(t *testing.T) {
	raw := writeTar(t, sourceTree)

	archive := filepath.Join(t.TempDir(), "cython-3.0.11.tar")
	if err := os.WriteFile(archive, raw.Bytes(), 0644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}

	destDir := t.TempDir()
	if err := Extract(archive, destDir); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	checkExtracted(t, destDir)
}

func TestExtractRejectsTraversal(t *testing.T) {
	raw := writeTar(t, []archiveEntry{
		{name: "../evil.sh", content: "rm -rf /", mode: 0755},
	})

	archive := filepath.Join(t.TempDir(), "evil.tar")
	if err := os.WriteFile(archive, raw.Bytes(), 0644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}

	if err := Extract(archive, t.TempDir()); err == nil {
		t.Error("entry escaping the destination should be rejected")
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "source.7z")
	if err := os.WriteFile(archive, []byte("not an archive"), 0644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}

	if err := Extract(archive, t.TempDir()); err == nil {
		t.Error("unknown archive format should be rejected")
	}
}
