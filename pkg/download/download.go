// pkg/download/download.go - fetching vendor installers into the cache.

package download

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/windowsadmins/silverback/pkg/logging"
	"github.com/windowsadmins/silverback/pkg/retry"
)

// Timeout bounds a single HTTP attempt. Vendor CDNs are slow but not that
// slow; retries handle the rest.
const Timeout = 5 * time.Minute

// Fetch downloads url into cacheDir and returns the local path. The
// download is retried with exponential backoff. When expectedSHA256 is
// non-empty the file hash must match or Fetch fails.
func Fetch(url, cacheDir, expectedSHA256 string, log *logging.Logger) (string, error) {
	if url == "" {
		return "", fmt.Errorf("invalid parameters: url cannot be empty")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	dest := filepath.Join(cacheDir, filepath.Base(url))
	cfg := retry.RetryConfig{MaxRetries: 3, InitialInterval: time.Second, Multiplier: 2.0, Log: log}

	err := retry.Retry(cfg, func() error {
		log.Info("Downloading %s to %s", url, dest)
		return fetchOnce(url, dest)
	})
	if err != nil {
		return "", err
	}

	if expectedSHA256 != "" && !Verify(dest, expectedSHA256) {
		os.Remove(dest)
		return "", fmt.Errorf("downloaded file %s failed SHA-256 verification", dest)
	}

	log.Info("Download completed: %s", dest)
	return dest, nil
}

// fetchOnce downloads into a temporary file and renames it into place only
// after the body is fully written, so a failed attempt never leaves a
// partial file at dest.
func fetchOnce(url, dest string) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".partial-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Get(url)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		tmp.Close()
		return fmt.Errorf("unexpected HTTP status code: %d", resp.StatusCode)
	}

	if _, err = io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write downloaded data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to finish writing download: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to move download into place: %w", err)
	}
	return nil
}

// Verify checks if the given file matches the expected SHA-256 hash.
func Verify(file string, expectedHash string) bool {
	actualHash := calculateHash(file)
	return actualHash != "" && strings.EqualFold(actualHash, expectedHash)
}

func calculateHash(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return ""
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
