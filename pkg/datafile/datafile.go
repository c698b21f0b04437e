// Package datafile provisions auxiliary data files. A file is fetched from a
// remote base location the first time it is asked for and served from the
// local cache afterwards.
package datafile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"
)

// Provisioner resolves data file names to cached local paths of the form
// <dir>/data/<prefix>_<name>.
type Provisioner struct {
	dir     string
	baseURL string
	prefix  string
	log     *slog.Logger

	group singleflight.Group
}

// New creates a Provisioner caching under dir and downloading from baseURL.
func New(dir, baseURL, prefix string, log *slog.Logger) *Provisioner {
	return &Provisioner{
		dir:     filepath.Join(dir, "data"),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		prefix:  prefix,
		log:     log,
	}
}

// Dir is the cache folder.
func (p *Provisioner) Dir() string { return p.dir }

// FileName is the cached name of a data file.
func (p *Provisioner) FileName(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "_" + name
}

// Path returns the local path of name, downloading it first when it is not
// cached. Concurrent requests for the same name share one download.
func (p *Provisioner) Path(ctx context.Context, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("data file %q: invalid name", name)
	}
	file := p.FileName(name)
	path := filepath.Join(p.dir, file)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	_, err, _ := p.group.Do(file, func() (any, error) {
		return nil, p.download(ctx, file, path)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (p *Provisioner) download(ctx context.Context, file, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat data file %s: %w", file, err)
	}
	if p.baseURL == "" {
		return fmt.Errorf("data file %s: not cached and no download location configured", file)
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmpDir, err := os.MkdirTemp(p.dir, ".fetch-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	src := p.baseURL + "/" + file
	tmp := filepath.Join(tmpDir, file)
	if err := FetchFile(ctx, src, tmp); err != nil {
		p.log.Error("data file download failed", "file", file, "src", src, "error", err)
		return fmt.Errorf("download data file %s: %w", file, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("install data file %s: %w", file, err)
	}
	p.log.Info("data file downloaded", "file", file, "path", path)
	return nil
}
