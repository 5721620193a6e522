package material

import (
	_ "embed"
	"strings"
)

// GLSLVersion heads every composed source.
const GLSLVersion = "#version 410 core"

var (
	//go:embed glsl/prelude_vertex.glsl
	preludeVertex string
	//go:embed glsl/prelude_fragment.glsl
	preludeFragment string

	//go:embed glsl/rand.glsl
	includeRand string
	//go:embed glsl/get_uv.glsl
	includeGetUv string
	//go:embed glsl/get_elevation.glsl
	includeGetElevation string
	//go:embed glsl/get_position.glsl
	includeGetPosition string
	//go:embed glsl/clip_sides.glsl
	includeClipSides string
	//go:embed glsl/initialize.glsl
	includeInitialize string

	//go:embed glsl/default_vertex.glsl
	defaultVertexMain string
	//go:embed glsl/default_fragment.glsl
	defaultFragmentMain string
)

// HeightFragment is a fragment main that shades by elevation instead of
// sampling the surface texture. Pass it as BuildOptions.FragmentSource.
//
//go:embed glsl/height_fragment.glsl
var HeightFragment string

// vertexIncludes is everything a user vertex main may call.
func vertexIncludes() string {
	return join(preludeVertex, includeRand, includeGetUv, includeGetElevation,
		includeGetPosition, includeClipSides, includeInitialize)
}

// fragmentIncludes is everything a user fragment main may call.
func fragmentIncludes() string {
	return join(preludeFragment, includeRand, includeGetUv, includeGetElevation)
}

// compose prefixes includes to the user main, or to fallback when user is empty.
func compose(header, includes, user, fallback string) string {
	main := user
	if strings.TrimSpace(main) == "" {
		main = fallback
	}
	return join(header, includes, main)
}

func join(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p)
		if !strings.HasSuffix(p, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
