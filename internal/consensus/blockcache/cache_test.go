package blockcache

import (
	"testing"

	"synnergy-network/internal/consensus/model"
)

func TestCacheSetGetRelease(t *testing.T) {
	c := New()
	if c.Get() != nil {
		t.Fatalf("expected empty cache initially")
	}

	b := &model.Block{Height: 5, Hash: "h5"}
	c.Set(b)
	if got := c.Get(); got == nil || got.Hash != "h5" {
		t.Fatalf("expected cached block h5, got %+v", got)
	}

	c.Release()
	if c.Get() != nil {
		t.Fatalf("expected cache empty after release")
	}
}

func TestCacheSetOverwrites(t *testing.T) {
	c := New()
	c.Set(&model.Block{Hash: "a"})
	c.Set(&model.Block{Hash: "b"})
	if got := c.Get(); got.Hash != "b" {
		t.Fatalf("expected overwrite to b, got %s", got.Hash)
	}
}
