package shader

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/splay-terrain/internal/engine/material"
)

// Locations caches the uniform locations of one program.
type Locations struct {
	program uint32
	locs    map[string]int32
}

// NewLocations creates an empty cache for program.
func NewLocations(program uint32) *Locations {
	return &Locations{program: program, locs: make(map[string]int32)}
}

// Program returns the program the cache belongs to.
func (l *Locations) Program() uint32 { return l.program }

// Get returns the location of name, querying GL on first use. Inactive
// uniforms are cached as -1 too.
func (l *Locations) Get(name string) int32 {
	if loc, ok := l.locs[name]; ok {
		return loc
	}
	loc := GetUniform(l.program, name)
	l.locs[name] = loc
	return loc
}

// TextureUnits assigns texture units to the texture uniforms of u, in name
// order starting at first.
func TextureUnits(u material.Uniforms, first uint32) map[string]uint32 {
	units := make(map[string]uint32)
	next := first
	for _, name := range u.Names() {
		if material.IsTexture(u[name]) {
			units[name] = next
			next++
		}
	}
	return units
}

// Apply uploads u to the program bound with gl.UseProgram. Textures are bound
// to units from first upward. It returns the next free texture unit.
func Apply(locs *Locations, u material.Uniforms, first uint32) uint32 {
	units := TextureUnits(u, first)
	for name, value := range u {
		loc := locs.Get(name)
		if loc < 0 {
			continue
		}
		switch v := value.(type) {
		case material.Scalar:
			gl.Uniform1f(loc, float32(v))
		case material.Int:
			gl.Uniform1i(loc, int32(v))
		case material.Vector3:
			gl.Uniform3f(loc, float32(v[0]), float32(v[1]), float32(v[2]))
		case material.TextureRef:
			unit := units[name]
			gl.ActiveTexture(gl.TEXTURE0 + unit)
			gl.BindTexture(gl.TEXTURE_2D, v.ID)
			gl.Uniform1i(loc, int32(unit))
		}
	}
	return first + uint32(len(units))
}

// SetMat4 uploads a column-major matrix.
func SetMat4(locs *Locations, name string, m [16]float32) {
	if loc := locs.Get(name); loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
}
