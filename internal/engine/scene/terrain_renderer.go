package scene

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/splay-terrain/internal/engine/material"
	"github.com/Faultbox/splay-terrain/internal/engine/shader"
	"github.com/Faultbox/splay-terrain/internal/engine/terrain"
	"github.com/Faultbox/splay-terrain/internal/engine/texture"
	"github.com/Faultbox/splay-terrain/internal/lod"
	"github.com/Faultbox/splay-terrain/internal/logger"
)

// Matrix uniforms set by the renderer rather than the material.
const (
	uniformProjection = "projectionMatrix"
	uniformModelView  = "modelViewMatrix"
)

var errNotReady = errors.New("scene: geometry and program must exist before attaching tiles")

// releaseFunc adapts a cleanup function to lod.Resource.
type releaseFunc func() error

func (f releaseFunc) Release() error { return f() }

// TerrainRenderer implements lod.Renderer over OpenGL 4.1 core. All methods
// must run on the thread that owns the GL context.
type TerrainRenderer struct {
	log *zap.Logger

	// Shared grid
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32

	// Shared program
	program uint32
	locs    *shader.Locations
	state   material.RenderState

	tiles    []*lod.Tile
	textures map[uint32]string

	// Wireframe forces line rendering regardless of the material.
	Wireframe bool

	// Stats from the last Render
	Drawn  int
	Culled int
}

// NewTerrainRenderer creates a renderer with no GPU resources yet.
func NewTerrainRenderer() *TerrainRenderer {
	return &TerrainRenderer{
		log:      logger.Named("scene"),
		textures: make(map[uint32]string),
	}
}

// CreateGeometry uploads the shared grid.
func (tr *TerrainRenderer) CreateGeometry(mesh *terrain.Mesh) (lod.Resource, error) {
	if mesh == nil || len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil, errors.New("scene: empty mesh")
	}
	if tr.vao != 0 {
		return nil, errors.New("scene: geometry already uploaded")
	}

	gl.GenVertexArrays(1, &tr.vao)
	gl.BindVertexArray(tr.vao)

	// VBO
	data := mesh.Interleave()
	gl.GenBuffers(1, &tr.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, tr.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, terrain.VertexStride, 0)
	gl.EnableVertexAttribArray(0)

	// UV (location 1)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, terrain.VertexStride, 3*4)
	gl.EnableVertexAttribArray(1)

	// EBO
	gl.GenBuffers(1, &tr.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, tr.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, unsafe.Pointer(&mesh.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	tr.indexCount = int32(len(mesh.Indices))

	tr.log.Debug("grid uploaded", zap.Int("vertices", mesh.VertexCount()), zap.Int("triangles", mesh.TriangleCount()))
	return releaseFunc(tr.clearGeometry), nil
}

// CreateProgram compiles the template's sources.
func (tr *TerrainRenderer) CreateProgram(tmpl *material.Template) (lod.Resource, error) {
	if tmpl == nil {
		return nil, errors.New("scene: nil template")
	}
	if tr.program != 0 {
		return nil, errors.New("scene: program already compiled")
	}

	program, err := shader.CompileProgram(tmpl.VertexSource(), tmpl.FragmentSource())
	if err != nil {
		return nil, fmt.Errorf("terrain shader: %w", err)
	}
	tr.program = program
	tr.locs = shader.NewLocations(program)
	tr.state = tmpl.State()

	tr.log.Debug("terrain program compiled", zap.Uint32("program", program))
	return releaseFunc(tr.clearProgram), nil
}

// Attach adds a tile to the draw list.
func (tr *TerrainRenderer) Attach(tile *lod.Tile) error {
	if tr.vao == 0 || tr.program == 0 {
		return errNotReady
	}
	tr.tiles = append(tr.tiles, tile)
	return nil
}

// Detach removes a tile from the draw list.
func (tr *TerrainRenderer) Detach(tile *lod.Tile) {
	for i, t := range tr.tiles {
		if t == tile {
			tr.tiles = append(tr.tiles[:i], tr.tiles[i+1:]...)
			return
		}
	}
}

// UploadTexture uploads img as a mipmapped, edge-clamped 2D texture with
// straight alpha. Rows are flipped so v=0 is the bottom of the image, matching
// heightmap lookups.
func (tr *TerrainRenderer) UploadTexture(img image.Image, name string) material.TextureRef {
	pix := texture.FlipVertical(img)

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)

	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(pix.Bounds().Dx()), int32(pix.Bounds().Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pix.Pix[0]))

	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	tr.textures[texID] = name
	return material.TextureRef{ID: texID, Name: name}
}

// ReleaseTexture deletes a texture created by UploadTexture.
func (tr *TerrainRenderer) ReleaseTexture(ref material.TextureRef) error {
	if _, ok := tr.textures[ref.ID]; !ok {
		return fmt.Errorf("scene: texture %d (%s) not owned by this renderer", ref.ID, ref.Name)
	}
	gl.DeleteTextures(1, &ref.ID)
	delete(tr.textures, ref.ID)
	return nil
}

// Render draws every attached tile whose bounding sphere is in view.
// model maps a tile to its world matrix.
func (tr *TerrainRenderer) Render(view, proj mgl32.Mat4, model func(*lod.Tile) mgl64.Mat4) {
	tr.Drawn, tr.Culled = 0, 0
	if tr.vao == 0 || tr.program == 0 || len(tr.tiles) == 0 {
		return
	}

	tr.applyState()
	defer tr.restoreState()

	gl.UseProgram(tr.program)
	shader.SetMat4(tr.locs, uniformProjection, proj)
	gl.BindVertexArray(tr.vao)

	frustum := NewFrustum(proj.Mul4(view))
	for _, tile := range tr.tiles {
		b := tile.Bounds
		center := mgl32.Vec3{float32(b.Center.X()), float32(b.Center.Y()), float32(b.Center.Z())}
		if !frustum.SphereVisible(center, float32(b.Radius)) {
			tr.Culled++
			continue
		}

		shader.Apply(tr.locs, tile.Program.Uniforms(), 0)
		modelView := view.Mul4(mat4To32(model(tile)))
		shader.SetMat4(tr.locs, uniformModelView, modelView)

		gl.DrawElements(gl.TRIANGLES, tr.indexCount, gl.UNSIGNED_INT, nil)
		tr.Drawn++
	}

	gl.BindVertexArray(0)
}

func (tr *TerrainRenderer) applyState() {
	if tr.state.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(tr.state.DepthWrite)
	if tr.state.Transparent {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}
	if tr.state.Wireframe || tr.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}
}

func (tr *TerrainRenderer) restoreState() {
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	gl.Disable(gl.BLEND)
	gl.DepthMask(true)
}

func (tr *TerrainRenderer) clearGeometry() error {
	if tr.vao == 0 {
		return errors.New("scene: geometry already released")
	}
	gl.DeleteVertexArrays(1, &tr.vao)
	gl.DeleteBuffers(1, &tr.vbo)
	gl.DeleteBuffers(1, &tr.ebo)
	tr.vao, tr.vbo, tr.ebo = 0, 0, 0
	tr.indexCount = 0
	return nil
}

func (tr *TerrainRenderer) clearProgram() error {
	if tr.program == 0 {
		return errors.New("scene: program already released")
	}
	gl.DeleteProgram(tr.program)
	tr.program = 0
	tr.locs = nil
	return nil
}

// Destroy releases everything the renderer still owns.
func (tr *TerrainRenderer) Destroy() {
	tr.tiles = nil
	if tr.vao != 0 {
		_ = tr.clearGeometry()
	}
	if tr.program != 0 {
		_ = tr.clearProgram()
	}
	for id := range tr.textures {
		gl.DeleteTextures(1, &id)
	}
	tr.textures = make(map[uint32]string)
}

// Tiles returns the number of attached tiles.
func (tr *TerrainRenderer) Tiles() int { return len(tr.tiles) }

func mat4To32(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}
