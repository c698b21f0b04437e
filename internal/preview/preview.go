// Package preview exports generated regions as zstd-compressed JSON lines:
// one header line followed by one line per chunk, row by row.
package preview

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/orbis/pkg/gen"
	"github.com/OCharnyshevich/orbis/pkg/noise"
)

// Source generates chunks. *pack.Container satisfies it.
type Source interface {
	Chunk(cx, cz int) (*gen.ChunkColumns, error)
}

// Region is an inclusive rectangle of chunks.
type Region struct {
	MinX int `json:"min_cx"`
	MinZ int `json:"min_cz"`
	MaxX int `json:"max_cx"`
	MaxZ int `json:"max_cz"`
}

// Around returns the region of chunks within radius of the chunk holding
// block column (x, z).
func Around(x, z, radius int) Region {
	cx := int(noise.FloorDiv(int64(x), 16))
	cz := int(noise.FloorDiv(int64(z), 16))
	return Region{MinX: cx - radius, MinZ: cz - radius, MaxX: cx + radius, MaxZ: cz + radius}
}

// Chunks is the number of chunks in r.
func (r Region) Chunks() int {
	if r.MaxX < r.MinX || r.MaxZ < r.MinZ {
		return 0
	}
	return (r.MaxX - r.MinX + 1) * (r.MaxZ - r.MinZ + 1)
}

// Header is the first line of an export.
type Header struct {
	World  string `json:"world"`
	Pack   string `json:"pack"`
	Seed   int64  `json:"seed"`
	Region Region `json:"region"`
}

// Record is one exported chunk. Heights and Biomes are indexed z*16+x.
type Record struct {
	CX      int      `json:"cx"`
	CZ      int      `json:"cz"`
	Heights []int    `json:"heights"`
	Biomes  []string `json:"biomes"`
}

// Stats summarises an export.
type Stats struct {
	Chunks    int
	MinHeight int
	MaxHeight int
	Biomes    map[string]int // column count per biome id
}

func newRecord(c *gen.ChunkColumns) Record {
	rec := Record{
		CX:      c.Pos.X,
		CZ:      c.Pos.Z,
		Heights: c.Heights[:],
		Biomes:  make([]string, len(c.Biomes)),
	}
	for i, b := range c.Biomes {
		rec.Biomes[i] = b.ID().String()
	}
	return rec
}

// Export generates every chunk of h.Region and writes it to w. Chunks of a
// row are generated concurrently with up to workers goroutines; rows are
// written in order.
func Export(ctx context.Context, w io.Writer, src Source, h Header, workers int) (Stats, error) {
	st := Stats{Biomes: make(map[string]int)}
	if h.Region.Chunks() == 0 {
		return st, fmt.Errorf("export: empty region %+v", h.Region)
	}
	if workers <= 0 {
		workers = 1
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return st, fmt.Errorf("create zstd writer: %w", err)
	}
	bw := bufio.NewWriterSize(enc, 256*1024)
	je := json.NewEncoder(bw)

	if err := je.Encode(h); err != nil {
		enc.Close()
		return st, fmt.Errorf("write header: %w", err)
	}

	r := h.Region
	row := make([]*gen.ChunkColumns, r.MaxX-r.MinX+1)
	for cz := r.MinZ; cz <= r.MaxZ; cz++ {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := range row {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				c, err := src.Chunk(r.MinX+i, cz)
				if err != nil {
					return fmt.Errorf("chunk %d,%d: %w", r.MinX+i, cz, err)
				}
				row[i] = c
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			enc.Close()
			return st, err
		}

		for _, c := range row {
			st.add(c)
			if err := je.Encode(newRecord(c)); err != nil {
				enc.Close()
				return st, fmt.Errorf("write chunk %d,%d: %w", c.Pos.X, c.Pos.Z, err)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		enc.Close()
		return st, fmt.Errorf("flush: %w", err)
	}
	if err := enc.Close(); err != nil {
		return st, fmt.Errorf("close zstd writer: %w", err)
	}
	return st, nil
}

func (s *Stats) add(c *gen.ChunkColumns) {
	if s.Chunks == 0 {
		s.MinHeight, s.MaxHeight = c.Heights[0], c.Heights[0]
	}
	s.Chunks++
	for i, h := range c.Heights {
		s.MinHeight = min(s.MinHeight, h)
		s.MaxHeight = max(s.MaxHeight, h)
		s.Biomes[c.Biomes[i].ID().String()]++
	}
}

// ExportFile writes an export to path atomically.
func ExportFile(ctx context.Context, path string, src Source, h Header, workers int) (Stats, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Stats{}, fmt.Errorf("create preview directory: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return Stats{}, fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(tmp)
		return Stats{}, fmt.Errorf("chmod temp file: %w", err)
	}
	st, err := Export(ctx, f, src, h, workers)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close temp file: %w", cerr)
	}
	if err != nil {
		os.Remove(tmp)
		return st, err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return st, fmt.Errorf("rename temp file: %w", err)
	}
	return st, nil
}

// Read decodes an export.
func Read(r io.Reader) (Header, []Record, error) {
	var h Header
	dec, err := zstd.NewReader(r)
	if err != nil {
		return h, nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()

	jd := json.NewDecoder(bufio.NewReaderSize(dec, 256*1024))
	if err := jd.Decode(&h); err != nil {
		return h, nil, fmt.Errorf("read header: %w", err)
	}
	var recs []Record
	for {
		var rec Record
		if err := jd.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return h, recs, nil
			}
			return h, recs, fmt.Errorf("read chunk %d: %w", len(recs), err)
		}
		recs = append(recs, rec)
	}
}
