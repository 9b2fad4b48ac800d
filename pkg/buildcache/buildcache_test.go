package buildcache

import (
	"context"
	"testing"
)

func TestKeyHash_Deterministic(t *testing.T) {
	k := Key{Chipdb: "chipdb-1k.bin", Package: "tq144", Seed: 1, NetlistSrc: []byte("design")}
	if k.Hash() != k.Hash() {
		t.Fatal("Hash() must be deterministic for the same Key")
	}
}

func TestKeyHash_DistinguishesFields(t *testing.T) {
	base := Key{Chipdb: "chipdb-1k.bin", Package: "tq144", Seed: 1, NetlistSrc: []byte("design")}

	variants := []Key{
		{Chipdb: "chipdb-8k.bin", Package: base.Package, Seed: base.Seed, NetlistSrc: base.NetlistSrc},
		{Chipdb: base.Chipdb, Package: "ct256", Seed: base.Seed, NetlistSrc: base.NetlistSrc},
		{Chipdb: base.Chipdb, Package: base.Package, Seed: 2, NetlistSrc: base.NetlistSrc},
		{Chipdb: base.Chipdb, Package: base.Package, Seed: base.Seed, RouteOnly: true, NetlistSrc: base.NetlistSrc},
		{Chipdb: base.Chipdb, Package: base.Package, Seed: base.Seed, NoPromote: true, NetlistSrc: base.NetlistSrc},
		{Chipdb: base.Chipdb, Package: base.Package, Seed: base.Seed, NetlistSrc: []byte("other design")},
	}

	baseHash := base.Hash()
	for i, v := range variants {
		if v.Hash() == baseHash {
			t.Errorf("variant %d collided with base hash %q", i, baseHash)
		}
	}
}

func TestOpen_EmptyAddrIsNoop(t *testing.T) {
	c := Open("")
	if c != nil {
		t.Fatal("Open(\"\") must return a nil *Cache")
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close() on nil *Cache should not error: %v", err)
	}

	ctx := context.Background()
	k := Key{Chipdb: "chipdb-1k.bin", Package: "tq144", Seed: 1}

	if _, ok := c.Get(ctx, k); ok {
		t.Fatal("Get() on nil *Cache must always miss")
	}

	c.Put(ctx, k, "bitstream text") // must not panic
}
