package pack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/orbis/pkg/datafile"
	"github.com/OCharnyshevich/orbis/pkg/gen"
)

// DefaultScanWorkers bounds how many pack folders are read at once.
const DefaultScanWorkers = 8

// Manager owns the packs folder: it discovers packs, hands out Containers
// and installs new packs.
type Manager struct {
	root    string
	codec   *gen.Codec
	index   *Index
	workers int
	log     *slog.Logger

	mu    sync.RWMutex
	packs map[string]*Pack
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithIndex records every scan outcome in idx.
func WithIndex(idx *Index) ManagerOption {
	return func(m *Manager) { m.index = idx }
}

// WithScanWorkers sets the scan concurrency.
func WithScanWorkers(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.workers = n
		}
	}
}

// NewManager creates a Manager over the packs folder root.
func NewManager(root string, codec *gen.Codec, log *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		root:    root,
		codec:   codec,
		workers: DefaultScanWorkers,
		log:     log,
		packs:   make(map[string]*Pack),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Root is the packs folder.
func (m *Manager) Root() string { return m.root }

type scanResult struct {
	folder string
	pack   *Pack
	err    error
}

// Scan rereads every pack folder under the root. Folders that fail to open
// are logged and skipped, as are packs whose name was already taken by a
// folder sorting earlier. The previous pack set is replaced only when the
// scan completes.
func (m *Manager) Scan(ctx context.Context) error {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return fmt.Errorf("create packs directory: %w", err)
	}
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return fmt.Errorf("read packs directory: %w", err)
	}

	var folders []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			folders = append(folders, e.Name())
		}
	}

	results := make([]scanResult, len(folders))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, folder := range folders {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := Open(filepath.Join(m.root, folder))
			results[i] = scanResult{folder: folder, pack: p, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("scan packs: %w", err)
	}

	packs := make(map[string]*Pack, len(results))
	for _, r := range results {
		entry := Entry{Folder: r.folder, Status: StatusOK}
		switch {
		case r.err != nil:
			entry.Status, entry.Error = StatusInvalid, r.err.Error()
			m.log.Warn("skipping pack", "folder", r.folder, "error", r.err)
		case packs[r.pack.Name] != nil:
			entry.Status = StatusDuplicate
			entry.Error = fmt.Sprintf("name %q already used by %s", r.pack.Name, filepath.Base(packs[r.pack.Name].Dir))
			m.log.Warn("skipping duplicate pack", "folder", r.folder, "name", r.pack.Name)
		default:
			packs[r.pack.Name] = r.pack
		}
		if r.pack != nil {
			entry.Name, entry.Version, entry.Dimension = r.pack.Name, r.pack.Version, r.pack.Dimension
		}
		if m.index != nil {
			if err := m.index.Record(ctx, entry); err != nil {
				m.log.Error("failed to record pack", "folder", r.folder, "error", err)
			}
		}
	}

	m.mu.Lock()
	m.packs = packs
	m.mu.Unlock()

	m.log.Info("packs scanned", "root", m.root, "found", len(packs), "skipped", len(folders)-len(packs))
	return nil
}

// Pack looks a pack up by name.
func (m *Manager) Pack(name string) (*Pack, error) {
	m.mu.RLock()
	p, ok := m.packs[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPackNotFound, name)
	}
	return p, nil
}

// Packs lists the known packs sorted by name.
func (m *Manager) Packs() []*Pack {
	m.mu.RLock()
	out := make([]*Pack, 0, len(m.packs))
	for _, p := range m.packs {
		out = append(out, p)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Pack) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Container returns a new Unbound container for the named pack.
func (m *Manager) Container(name string) (*Container, error) {
	p, err := m.Pack(name)
	if err != nil {
		return nil, err
	}
	return NewContainer(p, m.codec, m.log), nil
}

// Install fetches a pack from src (any go-getter source: a local folder, an
// archive URL, a git repository, ...) into <root>/<folder> and rescans.
func (m *Manager) Install(ctx context.Context, folder, src string) (*Pack, error) {
	if folder == "" || folder == "." || folder == ".." || strings.HasPrefix(folder, ".") || strings.ContainsAny(folder, `/\`) {
		return nil, fmt.Errorf("install pack: invalid folder name %q", folder)
	}
	dst := filepath.Join(m.root, folder)
	if _, err := os.Stat(dst); err == nil {
		return nil, fmt.Errorf("install pack %s: folder already exists", folder)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("install pack %s: %w", folder, err)
	}
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, fmt.Errorf("create packs directory: %w", err)
	}

	tmpDir, err := os.MkdirTemp(m.root, ".install-*")
	if err != nil {
		return nil, fmt.Errorf("install pack %s: %w", folder, err)
	}
	defer os.RemoveAll(tmpDir)

	staged := filepath.Join(tmpDir, folder)
	if err := datafile.FetchDir(ctx, src, staged); err != nil {
		return nil, fmt.Errorf("install pack %s: %w", folder, err)
	}
	p, err := Open(staged)
	if err != nil {
		return nil, fmt.Errorf("install pack %s: %w", folder, err)
	}
	if existing, err := m.Pack(p.Name); err == nil {
		return nil, fmt.Errorf("install pack %s: name %q already used by %s", folder, p.Name, filepath.Base(existing.Dir))
	}
	if err := os.Rename(staged, dst); err != nil {
		return nil, fmt.Errorf("install pack %s: %w", folder, err)
	}
	m.log.Info("pack installed", "folder", folder, "name", p.Name, "src", src)

	if err := m.Scan(ctx); err != nil {
		return nil, err
	}
	return m.Pack(p.Name)
}
