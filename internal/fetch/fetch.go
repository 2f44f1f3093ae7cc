// Package fetch downloads a prebuilt node binary from a release server
// and installs it locally. It is a stateless utility, unrelated to the
// bootstrap orchestrator.
package fetch

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/netforge/netforge/internal/util/retry"
)

// Options configures an install.
type Options struct {
	// BaseURL is the release server root.
	BaseURL string

	// Name is the binary and release artifact name.
	Name string

	// Version selects the release, e.g. v1.0.2.
	Version string

	// OS and Arch default to the current platform.
	OS   string
	Arch string

	// DestDir is where the binary is installed.
	DestDir string

	// Client defaults to http.DefaultClient.
	Client *http.Client

	// RetryDelay is the initial backoff between download attempts.
	RetryDelay time.Duration
}

// artifactURL builds the release tarball URL.
func (o Options) artifactURL() string {
	return fmt.Sprintf("%s/%s/%s_%s_%s.tar.gz", o.BaseURL, o.Version, o.Name, o.OS, o.Arch)
}

// Install downloads the release tarball, extracts the binary member, and
// writes it executable into DestDir. Transient server errors are
// retried; client errors and missing releases are not.
func Install(ctx context.Context, opts Options) (string, error) {
	if opts.OS == "" {
		opts.OS = runtime.GOOS
	}
	if opts.Arch == "" {
		opts.Arch = runtime.GOARCH
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}

	var body []byte
	err := retry.WithExponentialBackoff(ctx, func() error {
		var err error
		body, err = download(ctx, opts.Client, opts.artifactURL())
		return err
	}, retry.WithMaxRetries(3), retry.WithInitialDelay(opts.RetryDelay))
	if err != nil {
		return "", err
	}

	dest := filepath.Join(opts.DestDir, opts.Name)
	if err := extractBinary(body, opts.Name, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Fatal(fmt.Errorf("failed to build request: %w", err))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("release server error: %s", resp.Status)
	default:
		return nil, retry.Fatal(fmt.Errorf("release not available: %s: %s", url, resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read release body: %w", err)
	}
	return body, nil
}

// extractBinary finds the named member in the gzipped tarball and writes
// it to dest with the execute bit set.
func extractBinary(archive []byte, name, dest string) error {
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return fmt.Errorf("binary %q not found in release archive", name)
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}
		if header.Typeflag != tar.TypeReg || filepath.Base(header.Name) != name {
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("failed to create install dir: %w", err)
		}
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", dest, err)
		}
		// Release artifacts are trusted; no size cap applied.
		if _, err := io.Copy(out, tr); err != nil { //nolint:gosec
			out.Close()
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
		return out.Close()
	}
}
