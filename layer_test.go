package retouch

import (
	"errors"
	"image/color"
	"testing"
)

func TestLayerSetOrder(t *testing.T) {
	a := NewLayer(solidRaster(t, 4, 4, color.NRGBA{R: 1, A: 255}), "a")
	b := NewLayer(solidRaster(t, 4, 4, color.NRGBA{R: 2, A: 255}), "b")

	set := Layers().Add(a).Add(b)
	if set.Len() != 2 {
		t.Fatalf("expected 2 layers, got %d", set.Len())
	}
	ids := set.IDs()
	if ids[0] != a.ID() || ids[1] != b.ID() {
		t.Error("composite order should equal insertion order")
	}
}

func TestLayerSetReplaceKeepsID(t *testing.T) {
	a := NewLayer(solidRaster(t, 4, 4, color.NRGBA{R: 1, A: 255}), "first")
	b := NewLayer(solidRaster(t, 4, 4, color.NRGBA{R: 2, A: 255}), "second")
	set := Layers(a, b)

	newRaster := solidRaster(t, 4, 4, color.NRGBA{R: 3, A: 255})
	replaced, err := set.Replace(a.ID(), newRaster, "redone")
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	got := replaced.Get(a.ID())
	if got == nil {
		t.Fatal("replaced layer should keep its id")
	}
	if got.Raster() != newRaster || got.Prompt() != "redone" {
		t.Error("replace should swap raster and prompt")
	}
	if replaced.IDs()[0] != a.ID() {
		t.Error("replace should keep position")
	}
	// Original set is untouched.
	if set.Get(a.ID()).Prompt() != "first" {
		t.Error("replace should not mutate the source set")
	}
}

func TestLayerSetReplaceMissing(t *testing.T) {
	set := Layers(NewLayer(solidRaster(t, 4, 4, color.NRGBA{A: 255}), "a"))
	if _, err := set.Replace("nope", nil, ""); !errors.Is(err, ErrNoSuchLayer) {
		t.Errorf("expected ErrNoSuchLayer, got %v", err)
	}
}

func TestLayerSetRemove(t *testing.T) {
	a := NewLayer(solidRaster(t, 4, 4, color.NRGBA{R: 1, A: 255}), "a")
	b := NewLayer(solidRaster(t, 4, 4, color.NRGBA{R: 2, A: 255}), "b")
	c := NewLayer(solidRaster(t, 4, 4, color.NRGBA{R: 3, A: 255}), "c")
	set := Layers(a, b, c)

	out, err := set.Remove(b.ID())
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	ids := out.IDs()
	if len(ids) != 2 || ids[0] != a.ID() || ids[1] != c.ID() {
		t.Errorf("expected [a c], got %v", ids)
	}
	if _, err := set.Remove("nope"); !errors.Is(err, ErrNoSuchLayer) {
		t.Errorf("expected ErrNoSuchLayer, got %v", err)
	}
}

func TestLayerSetCloneRasters(t *testing.T) {
	a := NewLayer(solidRaster(t, 4, 4, color.NRGBA{R: 1, A: 255}), "a")
	set := Layers(a)
	clone := set.CloneRasters()

	got := clone.Get(a.ID())
	if got == nil {
		t.Fatal("layer id should be stable across raster cloning")
	}
	if got.Raster().ID() == a.Raster().ID() {
		t.Error("cloned raster should have a fresh identity")
	}
	if got.Prompt() != "a" {
		t.Errorf("expected prompt a, got %s", got.Prompt())
	}
}
