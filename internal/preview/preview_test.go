package preview

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/OCharnyshevich/orbis/pkg/gen"
	"github.com/OCharnyshevich/orbis/pkg/key"
)

var (
	sand  = gen.NewBiome(key.MustNew(key.Orbis, "sand"), nil)
	grass = gen.NewBiome(key.MustNew(key.Orbis, "grass"), nil)
)

// fakeSource heights every column cx+cz and puts sand on even chunk rows.
type fakeSource struct {
	fail gen.ChunkPos
	err  error
}

func (s fakeSource) Chunk(cx, cz int) (*gen.ChunkColumns, error) {
	if s.err != nil && s.fail == (gen.ChunkPos{X: cx, Z: cz}) {
		return nil, s.err
	}
	c := &gen.ChunkColumns{Pos: gen.ChunkPos{X: cx, Z: cz}}
	b := grass
	if cz%2 == 0 {
		b = sand
	}
	for i := range c.Heights {
		c.Heights[i] = cx + cz
		c.Biomes[i] = b
	}
	return c, nil
}

func TestAround(t *testing.T) {
	tests := []struct {
		x, z, radius int
		want         Region
	}{
		{0, 0, 0, Region{0, 0, 0, 0}},
		{15, 16, 1, Region{-1, 0, 1, 2}},
		{-1, -17, 2, Region{-3, -4, 1, 0}},
	}
	for _, tt := range tests {
		if got := Around(tt.x, tt.z, tt.radius); got != tt.want {
			t.Errorf("Around(%d, %d, %d) = %+v, want %+v", tt.x, tt.z, tt.radius, got, tt.want)
		}
	}
	if n := Around(0, 0, 2).Chunks(); n != 25 {
		t.Errorf("Chunks = %d, want 25", n)
	}
}

func TestExportRoundTrip(t *testing.T) {
	h := Header{World: "w", Pack: "flat", Seed: 3, Region: Region{MinX: -1, MinZ: -1, MaxX: 1, MaxZ: 0}}

	var buf bytes.Buffer
	st, err := Export(context.Background(), &buf, fakeSource{}, h, 4)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if st.Chunks != 6 {
		t.Errorf("Chunks = %d, want 6", st.Chunks)
	}
	if st.MinHeight != -2 || st.MaxHeight != 1 {
		t.Errorf("height range = [%d, %d], want [-2, 1]", st.MinHeight, st.MaxHeight)
	}
	if st.Biomes["orbis:sand"] != 3*256 || st.Biomes["orbis:grass"] != 3*256 {
		t.Errorf("Biomes = %v", st.Biomes)
	}

	gotH, recs, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if gotH != h {
		t.Errorf("header = %+v, want %+v", gotH, h)
	}
	if len(recs) != 6 {
		t.Fatalf("records = %d, want 6", len(recs))
	}
	// Row-major order: z outer, x inner.
	want := []gen.ChunkPos{{X: -1, Z: -1}, {X: 0, Z: -1}, {X: 1, Z: -1}, {X: -1, Z: 0}, {X: 0, Z: 0}, {X: 1, Z: 0}}
	for i, rec := range recs {
		if (gen.ChunkPos{X: rec.CX, Z: rec.CZ}) != want[i] {
			t.Errorf("record %d at %d,%d, want %+v", i, rec.CX, rec.CZ, want[i])
		}
		if len(rec.Heights) != 256 || rec.Heights[17] != rec.CX+rec.CZ {
			t.Errorf("record %d heights malformed", i)
		}
	}
	if recs[4].Biomes[0] != "orbis:sand" || recs[0].Biomes[0] != "orbis:grass" {
		t.Errorf("biomes = %s, %s", recs[4].Biomes[0], recs[0].Biomes[0])
	}
}

func TestExportChunkError(t *testing.T) {
	boom := errors.New("boom")
	src := fakeSource{fail: gen.ChunkPos{X: 1, Z: 1}, err: boom}
	h := Header{Region: Region{0, 0, 2, 2}}

	path := filepath.Join(t.TempDir(), "out", "preview.jsonl.zst")
	if _, err := ExportFile(context.Background(), path, src, h, 2); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("files left behind: %v", entries)
	}
}

func TestExportEmptyRegion(t *testing.T) {
	h := Header{Region: Region{MinX: 1, MaxX: 0}}
	if _, err := Export(context.Background(), &bytes.Buffer{}, fakeSource{}, h, 1); err == nil {
		t.Error("expected error for empty region")
	}
}

func TestExportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.jsonl.zst")
	h := Header{Region: Around(0, 0, 1)}
	if _, err := ExportFile(context.Background(), path, fakeSource{}, h, 0); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	_, recs, err := Read(f)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(recs) != 9 {
		t.Errorf("records = %d, want 9", len(recs))
	}
}

func TestExportFileConcurrentSamePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preview.jsonl.zst")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := Header{Seed: int64(i), Region: Around(0, 0, 1)}
			_, errs[i] = ExportFile(context.Background(), path, fakeSource{}, h, 2)
		}()
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("export %d: %v", i, err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, recs, err := Read(f); err != nil || len(recs) != 9 {
		t.Fatalf("Read = %d records, %v; want 9 complete records", len(recs), err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d files, want only the export", len(entries))
	}
}
