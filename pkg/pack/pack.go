// Package pack manages data packs: folders of settings documents that each
// describe how one kind of world is generated.
package pack

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/OCharnyshevich/orbis/pkg/gen"
)

var (
	ErrPackNotFound      = errors.New("pack not found")
	ErrContainerUnloaded = errors.New("container unloaded")
	ErrNotLoaded         = errors.New("container not loaded")
)

// Pack is a scanned pack folder. Its settings are read when a Container for
// it is loaded, not at scan time.
type Pack struct {
	gen.PackMeta

	// Dir is the pack's root folder.
	Dir string
}

// Open reads the metadata of the pack rooted at dir.
func Open(dir string) (*Pack, error) {
	meta, err := gen.ReadPackMeta(dir)
	if err != nil {
		return nil, fmt.Errorf("open pack %s: %w", filepath.Base(dir), err)
	}
	return &Pack{PackMeta: meta, Dir: dir}, nil
}
