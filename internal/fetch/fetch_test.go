package fetch

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tarball builds a gzipped tar archive with the given members.
func tarball(t *testing.T, members map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, data := range members {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o755,
			Size:     int64(len(data)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestInstall(t *testing.T) {
	t.Parallel()

	archive := tarball(t, map[string][]byte{
		"release/chaind": []byte("#!binary"),
		"release/NOTES":  []byte("notes"),
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1.0.2/chaind_linux_amd64.tar.gz", r.URL.Path)
		_, _ = w.Write(archive)
	}))
	defer server.Close()

	dest := t.TempDir()
	path, err := Install(context.Background(), Options{
		BaseURL: server.URL,
		Name:    "chaind",
		Version: "v1.0.2",
		OS:      "linux",
		Arch:    "amd64",
		DestDir: dest,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#!binary", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o111, "binary must be executable")
}

func TestInstall_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	archive := tarball(t, map[string][]byte{"chaind": []byte("bin")})

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write(archive)
	}))
	defer server.Close()

	_, err := Install(context.Background(), Options{
		BaseURL:    server.URL,
		Name:       "chaind",
		Version:    "v1.0.2",
		OS:         "linux",
		Arch:       "amd64",
		DestDir:    t.TempDir(),
		RetryDelay: time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestInstall_MissingReleaseIsNotRetried(t *testing.T) {
	t.Parallel()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := Install(context.Background(), Options{
		BaseURL: server.URL,
		Name:    "chaind",
		Version: "v9.9.9",
		OS:      "linux",
		Arch:    "amd64",
		DestDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestInstall_BinaryMissingFromArchive(t *testing.T) {
	t.Parallel()

	archive := tarball(t, map[string][]byte{"README": []byte("no binary here")})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer server.Close()

	_, err := Install(context.Background(), Options{
		BaseURL: server.URL,
		Name:    "chaind",
		Version: "v1.0.2",
		OS:      "linux",
		Arch:    "amd64",
		DestDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in release archive")
}
