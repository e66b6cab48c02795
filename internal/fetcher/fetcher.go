package fetcher

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/open-pkg-tools/pkgsmith/internal/integrity"
	"github.com/open-pkg-tools/pkgsmith/internal/recipe"
	"github.com/open-pkg-tools/pkgsmith/internal/utils/logger"
	"github.com/open-pkg-tools/pkgsmith/internal/utils/network"
)

// FetchSources downloads the recipe's source archives into destDir
// using a pool of workers. A source already present in destDir that
// passes the integrity gate is not downloaded again. It shows a single
// progress bar tracking files completed vs total.
func FetchSources(sources []recipe.Source, destDir string, workers int) error {
	log := logger.Logger()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", destDir, err)
	}

	total := len(sources)
	jobs := make(chan recipe.Source, total)
	errs := make(chan error, total)
	var wg sync.WaitGroup

	bar := progressbar.NewOptions(total,
		progressbar.OptionFullWidth(),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	client := network.NewSecureHTTPClient()

	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				name := src.FileName()
				destPath := filepath.Join(destDir, name)

				// cached and intact: nothing to do
				if err := integrity.VerifyFile(destPath, src.Digest); err == nil {
					log.Debugf("%s already cached, skipping download", name)
					bar.Add(1)
					continue
				}

				bar.Describe(fmt.Sprintf("downloading %s", name))
				if err := fetchOne(client, src.URL, destPath); err != nil {
					log.Errorf("downloading %s failed: %v", src.URL, err)
					errs <- err
				}
				bar.Add(1)
			}
		}()
	}

	for _, s := range sources {
		jobs <- s
	}
	close(jobs)

	wg.Wait()
	bar.Finish()
	close(errs)

	var all []error
	for err := range errs {
		all = append(all, err)
	}
	if len(all) > 0 {
		return fmt.Errorf("%d of %d downloads failed: %w", len(all), total, errors.Join(all...))
	}
	return nil
}

// FetchFile downloads a single URL into destDir and returns the local
// path. Used for auxiliary artifacts such as detached signatures.
func FetchFile(url, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", destDir, err)
	}
	destPath := filepath.Join(destDir, path.Base(url))
	client := network.NewSecureHTTPClient()
	if err := fetchOne(client, url, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

func fetchOne(client *http.Client, url, destPath string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status for %s: %s", url, resp.Status)
	}

	// download to a temp name so a partial file never passes for a
	// cached source
	tmp := destPath + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, destPath)
}
