// Package assets fetches, caches, and decodes model files. A Source
// abstracts where bytes come from; the Manager layers a byte cache and the
// glTF decoder on top.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound marks a path the source cannot serve.
var ErrNotFound = errors.New("assets: not found")

// Source fetches raw asset bytes. Implementations must honor ctx.
type Source interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// DirSource serves files from a local directory. Paths are slash-separated
// and resolved inside the root; anything escaping it is refused.
type DirSource struct {
	root string
}

func NewDirSource(root string) *DirSource {
	return &DirSource{root: filepath.Clean(root)}
}

// Root returns the directory the source serves from.
func (s *DirSource) Root() string {
	return s.root
}

// Resolve maps a configured asset path to its location on disk.
func (s *DirSource) Resolve(path string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: escapes asset root", path)
	}
	return full, nil
}

func (s *DirSource) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// HTTPSource fetches assets from a base URL. Only self-contained files make
// sense here; a .gltf that references sibling buffer files will not resolve
// them.
type HTTPSource struct {
	base   string
	client *http.Client
}

func NewHTTPSource(base string, timeout time.Duration) (*HTTPSource, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("asset base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("asset base url %q: unsupported scheme", base)
	}
	return &HTTPSource{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (s *HTTPSource) Fetch(ctx context.Context, path string) ([]byte, error) {
	u, err := url.JoinPath(s.base, path)
	if err != nil {
		return nil, fmt.Errorf("joining %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: %s", path, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", path, err)
	}
	return data, nil
}
