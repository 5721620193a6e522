package lod

import (
	"errors"
	"fmt"

	"github.com/Faultbox/splay-terrain/internal/engine/material"
	"github.com/Faultbox/splay-terrain/internal/engine/terrain"
)

// Resource is a renderer-owned object the manager must hand back.
type Resource interface {
	Release() error
}

// Renderer is the graphics side of the manager. The manager creates one
// geometry and one program per load and attaches every tile to the scene.
type Renderer interface {
	CreateGeometry(mesh *terrain.Mesh) (Resource, error)
	CreateProgram(tmpl *material.Template) (Resource, error)
	// Attach adds a tile to the scene. On error the tile must not be drawn.
	Attach(tile *Tile) error
	Detach(tile *Tile)
	ReleaseTexture(ref material.TextureRef) error
}

// ErrReleased is returned when a headless resource is released twice.
var ErrReleased = errors.New("lod: resource already released")

// HeadlessRenderer records what the manager asks of it without touching a
// GPU. It serves CPU-only hosts such as terraintool.
type HeadlessRenderer struct {
	attached []*Tile
	textures []material.TextureRef
	live     int
	created  int
}

// NewHeadlessRenderer creates an empty headless renderer.
func NewHeadlessRenderer() *HeadlessRenderer {
	return &HeadlessRenderer{}
}

type headlessResource struct {
	r        *HeadlessRenderer
	kind     string
	released bool
}

func (h *headlessResource) Release() error {
	if h.released {
		return fmt.Errorf("%s: %w", h.kind, ErrReleased)
	}
	h.released = true
	h.r.live--
	return nil
}

func (r *HeadlessRenderer) newResource(kind string) Resource {
	r.live++
	r.created++
	return &headlessResource{r: r, kind: kind}
}

func (r *HeadlessRenderer) CreateGeometry(mesh *terrain.Mesh) (Resource, error) {
	if mesh == nil || len(mesh.Indices) == 0 {
		return nil, errors.New("lod: empty geometry")
	}
	return r.newResource("geometry"), nil
}

func (r *HeadlessRenderer) CreateProgram(tmpl *material.Template) (Resource, error) {
	if tmpl == nil {
		return nil, errors.New("lod: nil template")
	}
	return r.newResource("program"), nil
}

func (r *HeadlessRenderer) Attach(tile *Tile) error {
	r.attached = append(r.attached, tile)
	return nil
}

func (r *HeadlessRenderer) Detach(tile *Tile) {
	for i, t := range r.attached {
		if t == tile {
			r.attached = append(r.attached[:i], r.attached[i+1:]...)
			return
		}
	}
}

func (r *HeadlessRenderer) ReleaseTexture(ref material.TextureRef) error {
	r.textures = append(r.textures, ref)
	return nil
}

// Attached returns the tiles currently in the scene, in attach order.
func (r *HeadlessRenderer) Attached() []*Tile {
	return append([]*Tile(nil), r.attached...)
}

// ReleasedTextures returns every texture released so far.
func (r *HeadlessRenderer) ReleasedTextures() []material.TextureRef {
	return append([]material.TextureRef(nil), r.textures...)
}

// LiveResources is the number of created resources not yet released.
func (r *HeadlessRenderer) LiveResources() int { return r.live }

// CreatedResources is the number of resources ever created.
func (r *HeadlessRenderer) CreatedResources() int { return r.created }
