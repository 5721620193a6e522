package material

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/splay-terrain/internal/merge"
)

// Uniform is a typed uniform value. The set of variants is closed.
type Uniform interface {
	uniform()
}

// Scalar is a float uniform.
type Scalar float64

// Int is an int uniform.
type Int int32

// Vector3 is a vec3 uniform.
type Vector3 mgl64.Vec3

// TextureRef names a texture owned by the renderer. ID 0 is "no texture".
type TextureRef struct {
	ID   uint32
	Name string
}

func (Scalar) uniform()     {}
func (Int) uniform()        {}
func (Vector3) uniform()    {}
func (TextureRef) uniform() {}

// Vec returns v as an mgl64 vector.
func (v Vector3) Vec() mgl64.Vec3 { return mgl64.Vec3(v) }

// IsTexture reports whether u references a texture.
func IsTexture(u Uniform) bool {
	switch u.(type) {
	case TextureRef:
		return true
	default:
		return false
	}
}

// Uniforms maps GLSL uniform names to values.
type Uniforms map[string]Uniform

// Clone returns a shallow copy. Uniform values are immutable so this is a full copy.
func (u Uniforms) Clone() Uniforms {
	return Merge(merge.OverrideWins, u, nil)
}

// Names returns the uniform names in sorted order.
func (u Uniforms) Names() []string {
	names := make([]string, 0, len(u))
	for name := range u {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Textures returns the texture references in name order, skipping empty ones.
func (u Uniforms) Textures() []TextureRef {
	var out []TextureRef
	for _, name := range u.Names() {
		if ref, ok := u[name].(TextureRef); ok && ref.ID != 0 {
			out = append(out, ref)
		}
	}
	return out
}

// Merge combines two uniform sets into a new one without touching either.
func Merge(s merge.Strategy, base, extra Uniforms) Uniforms {
	return merge.Maps(s, base, extra)
}
