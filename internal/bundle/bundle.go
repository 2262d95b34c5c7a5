package bundle

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ManifestName is the archive entry holding the manifest.
const ManifestName = "manifest.yaml"

// Manifest describes the contents of an export archive.
type Manifest struct {
	Version   string    `yaml:"version"`
	ExportID  string    `yaml:"export_id"`
	CreatedAt time.Time `yaml:"created_at"`
	SessionID string    `yaml:"session_id,omitempty"`
	Entries   []Entry   `yaml:"entries"`
}

// Entry maps an archived file back to the domain it was generated from.
type Entry struct {
	Domain string `yaml:"domain"`
	File   string `yaml:"file"`
	Size   int    `yaml:"size"`
}

// File is one blob to archive.
type File struct {
	Name   string
	Domain string
	Data   []byte
}

// NewManifest returns a manifest with a fresh export ID.
func NewManifest(sessionID string, createdAt time.Time) Manifest {
	return Manifest{
		Version:   "1",
		ExportID:  uuid.NewString(),
		CreatedAt: createdAt.UTC(),
		SessionID: sessionID,
	}
}

// Pack writes files, in order, plus a manifest into a gzip-compressed tar
// and returns the archive bytes. File names must be unique flat names.
// m.Entries is replaced with one entry per file.
func Pack(m *Manifest, files []File) ([]byte, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("nothing to bundle")
	}
	seen := make(map[string]bool)
	m.Entries = nil
	for _, f := range files {
		if err := checkName(f.Name); err != nil {
			return nil, err
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("duplicate file name in bundle: %s", f.Name)
		}
		seen[f.Name] = true
		m.Entries = append(m.Entries, Entry{Domain: f.Domain, File: f.Name, Size: len(f.Data)})
	}

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	for _, f := range files {
		if err := writeEntry(tw, f.Name, f.Data, m.CreatedAt); err != nil {
			return nil, err
		}
	}

	manifestData, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := writeEntry(tw, ManifestName, manifestData, m.CreatedAt); err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish tar: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish gzip: %w", err)
	}
	return buf.Bytes(), nil
}

func writeEntry(tw *tar.Writer, name string, data []byte, modTime time.Time) error {
	header := &tar.Header{
		Name:    name,
		Size:    int64(len(data)),
		Mode:    0644,
		ModTime: modTime,
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("failed to write tar content for %s: %w", name, err)
	}
	return nil
}

func checkName(name string) error {
	if name == "" || name == ManifestName {
		return fmt.Errorf("invalid file name in bundle: %q", name)
	}
	if strings.ContainsAny(name, `/\`) || path.Clean(name) != name {
		return fmt.Errorf("file name must not contain path separators: %q", name)
	}
	return nil
}

// Unpack reads an archive produced by Pack. It returns the manifest and the
// file contents keyed by name.
func Unpack(blob []byte) (*Manifest, map[string][]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read gzip: %w", err)
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	var manifest *Manifest
	files := make(map[string][]byte)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read tar: %w", err)
		}

		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read file %s: %w", header.Name, err)
		}

		if header.Name == ManifestName {
			var m Manifest
			if err := yaml.Unmarshal(content, &m); err != nil {
				return nil, nil, fmt.Errorf("failed to parse manifest: %w", err)
			}
			manifest = &m
			continue
		}
		files[header.Name] = content
	}

	if manifest == nil || manifest.ExportID == "" {
		return nil, nil, fmt.Errorf("invalid bundle: missing or empty manifest")
	}
	for _, e := range manifest.Entries {
		if _, ok := files[e.File]; !ok {
			return nil, nil, fmt.Errorf("invalid bundle: manifest lists %s but archive does not contain it", e.File)
		}
	}
	return manifest, files, nil
}

// ReadManifest reads only the manifest from an archive on disk.
func ReadManifest(bundlePath string) (*Manifest, error) {
	inFile, err := os.Open(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	defer inFile.Close()

	gr, err := gzip.NewReader(inFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read gzip: %w", err)
	}
	defer gr.Close()

	tr := tar.NewReader(gr)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar: %w", err)
		}

		if header.Name == ManifestName {
			content, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("failed to read manifest: %w", err)
			}
			var manifest Manifest
			if err := yaml.Unmarshal(content, &manifest); err != nil {
				return nil, fmt.Errorf("failed to parse manifest: %w", err)
			}
			return &manifest, nil
		}
	}

	return nil, fmt.Errorf("manifest not found in bundle")
}
