package gen

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/OCharnyshevich/orbis/pkg/key"
)

func newConst(b Binding) Terrain        { return &constTerrain{Base: NewBase(b)} }
func newStripes(b Binding) Distributor { return &stripes{Base: NewBase(b), Width: 1} }

func TestRegistryDuplicatePerKind(t *testing.T) {
	r := NewRegistry()
	id := key.MustNew("test", "dup")

	if err := r.RegisterTerrain(id, newConst); err != nil {
		t.Fatalf("first RegisterTerrain: %v", err)
	}
	if err := r.RegisterTerrain(id, newConst); !errors.Is(err, ErrDuplicateRegistration) {
		t.Fatalf("second RegisterTerrain err = %v, want ErrDuplicateRegistration", err)
	}
	// The same id in another kind is a different entry.
	if err := r.RegisterDistributor(id, newStripes); err != nil {
		t.Fatalf("RegisterDistributor with terrain id: %v", err)
	}
}

func TestRegistryFrozen(t *testing.T) {
	r := NewRegistry()
	r.MustRegisterTerrain(key.MustNew("test", "a"), newConst)
	r.Freeze()

	if !r.Frozen() {
		t.Fatal("Frozen() = false after Freeze")
	}
	err := r.RegisterTerrain(key.MustNew("test", "b"), newConst)
	if !errors.Is(err, ErrRegistryFrozen) {
		t.Fatalf("err = %v, want ErrRegistryFrozen", err)
	}
	if _, err := r.Terrain(key.MustNew("test", "a")); err != nil {
		t.Fatalf("lookup after freeze: %v", err)
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	r := NewRegistry()
	r.Freeze()

	if _, err := r.Terrain(key.MustNew("test", "missing")); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Terrain err = %v, want ErrUnknownProvider", err)
	}
	if _, err := r.Distributor(key.MustNew("test", "missing")); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Distributor err = %v, want ErrUnknownProvider", err)
	}
}

func TestRegistryRejectsInvalidID(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterTerrain(key.Key{Namespace: "Bad", Path: "x"}, newConst); err == nil {
		t.Fatal("expected error for invalid id")
	}
	if err := r.RegisterTerrain(key.MustNew("test", "nil"), nil); err == nil {
		t.Fatal("expected error for nil factory")
	}
}

func TestRegistryGenericRegister(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(KindTerrain, key.MustNew("test", "t"), TerrainFactory(newConst)); err != nil {
		t.Fatalf("Register terrain: %v", err)
	}
	if err := r.Register(KindDistributor, key.MustNew("test", "d"), newStripes); err != nil {
		t.Fatalf("Register distributor: %v", err)
	}
	if err := r.Register(KindDistributor, key.MustNew("test", "x"), newConst); err == nil {
		t.Fatal("expected error for terrain factory under distributor kind")
	}
}

func TestRegistryIDsSorted(t *testing.T) {
	r := NewRegistry()
	for _, p := range []string{"zeta", "alpha", "mid"} {
		r.MustRegisterTerrain(key.MustNew("test", p), newConst)
	}
	got := r.IDs(KindTerrain)
	want := []key.Key{
		key.MustNew("test", "alpha"),
		key.MustNew("test", "mid"),
		key.MustNew("test", "zeta"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("IDs = %v, want %v", got, want)
	}
	if ids := r.IDs(KindDistributor); len(ids) != 0 {
		t.Errorf("distributor IDs = %v, want none", ids)
	}
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	r := NewRegistry()
	r.MustRegisterDistributor(key.MustNew("test", "d"), newStripes)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	r.MustRegisterDistributor(key.MustNew("test", "d"), newStripes)
}

func TestRegistryLookupsDuringRegistration(t *testing.T) {
	r := NewRegistry()
	firstID := key.MustNew("test", "t0")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 200 {
			r.MustRegisterTerrain(key.MustNew("test", fmt.Sprintf("t%d", i)), newConst)
		}
	}()
	go func() {
		defer wg.Done()
		for range 200 {
			_, _ = r.Terrain(firstID)
			_ = r.IDs(KindTerrain)
		}
	}()
	wg.Wait()
	r.Freeze()

	if _, err := r.Terrain(firstID); err != nil {
		t.Fatalf("Terrain after freeze: %v", err)
	}
	if n := len(r.IDs(KindTerrain)); n != 200 {
		t.Errorf("IDs = %d, want 200", n)
	}
}
