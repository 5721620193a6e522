package debug

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/splay-terrain/internal/lod"
	"github.com/Faultbox/splay-terrain/pkg/splay"
)

func TestTileOutlines(t *testing.T) {
	tiles := []*lod.Tile{
		{Ring: 0, Position: mgl64.Vec2{0, 0}, Scale: 2},
		{Ring: 1, Position: mgl64.Vec2{10, 0}, Scale: 4, Edge: splay.EdgeRight | splay.EdgeUp},
	}

	verts := TileOutlines(tiles, 5)
	if len(verts) != 16 {
		t.Fatalf("expected 8 vertices per tile, got %d", len(verts))
	}

	// First tile spans -1..1 and uses the ring 0 colour everywhere.
	for _, v := range verts[:8] {
		if v.Position[2] != 5 {
			t.Errorf("overlay height should be 5, got %v", v.Position[2])
		}
		if v.Position[0] < -1 || v.Position[0] > 1 || v.Position[1] < -1 || v.Position[1] > 1 {
			t.Errorf("vertex %v outside tile", v.Position)
		}
		if v.Color != RingColor(0) {
			t.Errorf("unclipped side should use ring colour, got %v", v.Color)
		}
	}

	// Second tile: up (0) and right (3) sides are clipped.
	second := verts[8:]
	for side := 0; side < 4; side++ {
		c := second[side*2].Color
		clipped := side == 0 || side == 3
		if clipped && c != ClippedEdgeColor {
			t.Errorf("side %d should be highlighted", side)
		}
		if !clipped && c != RingColor(1) {
			t.Errorf("side %d should use ring 1 colour, got %v", side, c)
		}
	}
	if up := second[0]; up.Position[1] != 2 {
		t.Errorf("up side should sit at y=2, got %v", up.Position)
	}
	if right := second[6]; right.Position[0] != 12 {
		t.Errorf("right side should sit at x=12, got %v", right.Position)
	}
}

func TestRingColorCycles(t *testing.T) {
	if RingColor(len(ringColors)) != RingColor(0) {
		t.Error("ring colours should cycle")
	}
	if RingColor(-3) != RingColor(0) {
		t.Error("negative ring should clamp to 0")
	}
}

func TestFlatten(t *testing.T) {
	data := Flatten([]LineVertex{{Position: [3]float32{1, 2, 3}, Color: [3]float32{4, 5, 6}}})
	if len(data)*4 != LineVertexStride {
		t.Fatalf("unexpected length %d", len(data))
	}
	for i, want := range []float32{1, 2, 3, 4, 5, 6} {
		if data[i] != want {
			t.Errorf("data[%d] = %v, want %v", i, data[i], want)
		}
	}
}
