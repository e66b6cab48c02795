package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sassoftware/go-rpmutils"

	"github.com/open-pkg-tools/pkgsmith/internal/utils/logger"
)

// extractRPM expands the payload of a source RPM into destDir. Some
// upstreams only publish their toolchains as .src.rpm files.
func extractRPM(archivePath, destDir string) error {
	log := logger.Logger()

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", archivePath, err)
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return fmt.Errorf("reading rpm %s: %w", filepath.Base(archivePath), err)
	}

	if nevra, err := rpm.Header.GetNEVRA(); err == nil {
		log.Debugf("rpm payload: %s", nevra.String())
	}

	if err := rpm.ExpandPayload(destDir); err != nil {
		return fmt.Errorf("expanding rpm payload of %s: %w", filepath.Base(archivePath), err)
	}
	return nil
}
