package artifacts

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"
)

// ManifestEntry records one artifact's size and content digest.
type ManifestEntry struct {
	Name   string `json:"name"`
	Bytes  int64  `json:"bytes"`
	Digest string `json:"digest"`
}

// Manifest ties a run id to the digests of everything it produced, so a
// downstream consumer can verify it holds the exact outputs of one run.
type Manifest struct {
	RunID     string          `json:"run_id"`
	CreatedAt time.Time       `json:"created_at"`
	Artifacts []ManifestEntry `json:"artifacts"`
}

// DigestFile returns the hex BLAKE2b-256 digest of a file.
func DigestFile(path string) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", 0, err
	}
	n, err := io.Copy(h, file)
	if err != nil {
		return "", 0, fmt.Errorf("digest %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// WriteManifest digests each existing path and writes the manifest to the
// layout's manifest location. Absent artifacts are simply omitted; stages
// are individually runnable so a partial output set is legitimate.
func (l *Layout) WriteManifest(runID string, paths []string) (*Manifest, error) {
	m := &Manifest{
		RunID:     runID,
		CreatedAt: time.Now().UTC(),
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		digest, size, err := DigestFile(p)
		if err != nil {
			return nil, err
		}
		m.Artifacts = append(m.Artifacts, ManifestEntry{
			Name:   filepath.Base(p),
			Bytes:  size,
			Digest: digest,
		})
	}

	_, err := WriteAtomic(l.Manifest(), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var m Manifest
	if err := json.NewDecoder(file).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// Verify re-digests each manifest entry under dir and reports the first
// mismatch.
func (m *Manifest) Verify(dir string) error {
	for _, e := range m.Artifacts {
		path := filepath.Join(dir, e.Name)
		digest, size, err := DigestFile(path)
		if err != nil {
			return err
		}
		if size != e.Bytes {
			return fmt.Errorf("%s: size %d, manifest says %d", e.Name, size, e.Bytes)
		}
		if digest != e.Digest {
			return fmt.Errorf("%s: content digest mismatch", e.Name)
		}
	}
	return nil
}
