// Package material composes the terrain shader program template that every
// tile clones.
//
// A Template is built once from Constants, which become preprocessor defines,
// base Uniforms and optional user main functions. Defines are fixed for the
// life of a template; each tile only differs in its uniforms.
package material

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Faultbox/splay-terrain/internal/merge"
)

// Uniform names shared by the includes and the LOD manager.
const (
	UniformTexture      = "texture"
	UniformHeightmap    = "heightmap"
	UniformNodeEdge     = "nodeEdge"
	UniformNodeScale    = "nodeScale"
	UniformNodePosition = "nodePosition"
	UniformCPosition    = "cPosition"
)

// Define names.
const (
	DefineClipEdge     = "CLIP_EDGE"
	DefineElevation    = "ELEVATION"
	DefineTessellation = "TESSELATION"
	DefineWorldSizeX   = "WORLD_SIZE_X"
	DefineWorldSizeY   = "WORLD_SIZE_Y"
	DefineViewportSize = "VIEWPORT_SIZE"
)

// ErrInvalidConstants is wrapped by Constants.Validate failures.
var ErrInvalidConstants = errors.New("material: invalid constants")

// Constants are the compile-time terrain parameters.
type Constants struct {
	ClipEdge     float64 `yaml:"clip_edge"`
	MaxElevation float64 `yaml:"elevation"`
	Tessellation int     `yaml:"tessellation"`
	WorldSizeX   float64 `yaml:"world_size_x"`
	WorldSizeY   float64 `yaml:"world_size_y"`
	ViewportSize float64 `yaml:"viewport_size"`
}

// DefaultConstants returns the stock terrain parameters.
func DefaultConstants() Constants {
	return Constants{
		ClipEdge:     0.5,
		MaxElevation: 200,
		Tessellation: 32,
		WorldSizeX:   32768,
		WorldSizeY:   32768,
		ViewportSize: 32768,
	}
}

// Validate checks that the constants describe a usable terrain.
func (c Constants) Validate() error {
	switch {
	case c.Tessellation <= 0:
		return fmt.Errorf("%w: tessellation %d", ErrInvalidConstants, c.Tessellation)
	case c.ClipEdge <= 0 || c.ClipEdge > 0.5:
		return fmt.Errorf("%w: clip edge %v not in (0, 0.5]", ErrInvalidConstants, c.ClipEdge)
	case c.WorldSizeX <= 0 || c.WorldSizeY <= 0:
		return fmt.Errorf("%w: world size %vx%v", ErrInvalidConstants, c.WorldSizeX, c.WorldSizeY)
	case c.ViewportSize <= 0:
		return fmt.Errorf("%w: viewport size %v", ErrInvalidConstants, c.ViewportSize)
	case c.MaxElevation < 0:
		return fmt.Errorf("%w: elevation %v", ErrInvalidConstants, c.MaxElevation)
	}
	return nil
}

// FormatConstant renders v with exactly one decimal place, so integral values
// still read as GLSL floats ("32" becomes "32.0").
func FormatConstant(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// defines renders the constants as define values.
func (c Constants) defines() map[string]string {
	return map[string]string{
		DefineClipEdge:     FormatConstant(c.ClipEdge),
		DefineElevation:    FormatConstant(c.MaxElevation),
		DefineTessellation: FormatConstant(float64(c.Tessellation)),
		DefineWorldSizeX:   FormatConstant(c.WorldSizeX),
		DefineWorldSizeY:   FormatConstant(c.WorldSizeY),
		DefineViewportSize: FormatConstant(c.ViewportSize),
	}
}

// RenderState carries the fixed-function switches of a material.
type RenderState struct {
	DepthTest   bool `yaml:"depth_test"`
	DepthWrite  bool `yaml:"depth_write"`
	Wireframe   bool `yaml:"wireframe"`
	Transparent bool `yaml:"transparent"`
}

// DefaultRenderState is opaque and depth tested.
func DefaultRenderState() RenderState {
	return RenderState{DepthTest: true, DepthWrite: true}
}

// Define is a single preprocessor definition.
type Define struct {
	Name  string
	Value string
}

// BuildOptions configure Build.
type BuildOptions struct {
	Constants Constants
	// Defines are extra definitions. The constant defines take precedence.
	Defines  map[string]string
	Uniforms Uniforms
	State    RenderState
	// VertexSource and FragmentSource hold user main functions appended after
	// the includes. Empty selects the default mains.
	VertexSource   string
	FragmentSource string
}

// requiredUniforms are the uniforms the includes read, at their zero values.
func requiredUniforms() Uniforms {
	return Uniforms{
		UniformTexture:      TextureRef{},
		UniformHeightmap:    TextureRef{},
		UniformNodeEdge:     Int(0),
		UniformNodeScale:    Scalar(0),
		UniformNodePosition: Vector3{},
		UniformCPosition:    Vector3{},
	}
}

// Template is the shared program every tile clones.
type Template struct {
	constants Constants
	defines   map[string]string
	state     RenderState
	base      Uniforms
	vertex    string
	fragment  string
}

// Build composes a template. The defines are formatted exactly once here.
func Build(opts BuildOptions) (*Template, error) {
	if err := opts.Constants.Validate(); err != nil {
		return nil, err
	}
	for name := range opts.Defines {
		if name == "" || strings.ContainsAny(name, " \t\n") {
			return nil, fmt.Errorf("material: invalid define name %q", name)
		}
	}

	defines := merge.Maps(merge.OverrideWins, opts.Defines, opts.Constants.defines())
	t := &Template{
		constants: opts.Constants,
		defines:   defines,
		state:     opts.State,
		base:      Merge(merge.FirstWins, opts.Uniforms, requiredUniforms()),
	}

	header := GLSLVersion + "\n" + t.defineBlock()
	t.vertex = compose(header, vertexIncludes(), opts.VertexSource, defaultVertexMain)
	t.fragment = compose(header, fragmentIncludes(), opts.FragmentSource, defaultFragmentMain)
	return t, nil
}

func (t *Template) defineBlock() string {
	var b strings.Builder
	for _, d := range t.Defines() {
		fmt.Fprintf(&b, "#define %s %s\n", d.Name, d.Value)
	}
	return b.String()
}

// Defines returns a copy of the definitions sorted by name.
func (t *Template) Defines() []Define {
	out := make([]Define, 0, len(t.defines))
	for name, value := range t.defines {
		out = append(out, Define{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Define looks up a single definition.
func (t *Template) Define(name string) (string, bool) {
	v, ok := t.defines[name]
	return v, ok
}

func (t *Template) Constants() Constants { return t.constants }

func (t *Template) State() RenderState { return t.state }

// VertexSource returns the composed vertex stage source.
func (t *Template) VertexSource() string { return t.vertex }

// FragmentSource returns the composed fragment stage source.
func (t *Template) FragmentSource() string { return t.fragment }

// Uniforms returns a copy of the base uniforms.
func (t *Template) Uniforms() Uniforms { return t.base.Clone() }

// Textures lists the textures referenced by the base uniforms.
func (t *Template) Textures() []TextureRef { return t.base.Textures() }

// SetShared replaces a base uniform. Every instance that does not override
// name sees the new value.
func (t *Template) SetShared(name string, u Uniform) {
	t.base[name] = u
}

// Clone creates a per-tile instance. Tile uniforms win over the base; defines
// and sources are shared with the template. Cloning a nil template panics.
func (t *Template) Clone(tile Uniforms) *Instance {
	if t == nil {
		panic("material: clone of nil template")
	}
	return &Instance{tmpl: t, own: tile.Clone()}
}

// Instance is one tile's view of a template.
type Instance struct {
	tmpl *Template
	own  Uniforms
}

// Template returns the template the instance was cloned from.
func (i *Instance) Template() *Template { return i.tmpl }

// Set overrides a uniform for this instance only.
func (i *Instance) Set(name string, u Uniform) {
	i.own[name] = u
}

// Uniform resolves name against the instance, then the template.
func (i *Instance) Uniform(name string) (Uniform, bool) {
	if u, ok := i.own[name]; ok {
		return u, true
	}
	u, ok := i.tmpl.base[name]
	return u, ok
}

// Uniforms returns the effective uniform set.
func (i *Instance) Uniforms() Uniforms {
	return Merge(merge.OverrideWins, i.tmpl.base, i.own)
}
