//go:build !android

package desktop

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Cloud vertex shader: perspective point sprites with size attenuation.
const cloudVertSrc = `#version 410 core

layout(location = 0) in vec3 aPos;
layout(location = 1) in vec3 aColor;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProj;
uniform float uSize;  // world units
uniform float uScale; // half the framebuffer height

out vec3 vColor;
out float vDepth;

void main() {
    vec4 mv = uView * uModel * vec4(aPos, 1.0);
    gl_Position = uProj * mv;
    vDepth = -mv.z;
    gl_PointSize = max(1.0, uSize * uScale / max(vDepth, 0.001));
    vColor = aColor;
}
` + "\x00"

// Cloud fragment shader: soft round spark with exp2 fog toward black, additive.
const cloudFragSrc = `#version 410 core

uniform float uFogDensity;
uniform float uOpacity;

in vec3 vColor;
in float vDepth;
out vec4 FragColor;

void main() {
    float dist = length(gl_PointCoord - vec2(0.5)) * 2.0;
    if (dist > 1.0) discard;
    float falloff = 1.0 - dist;
    falloff = falloff * falloff;
    float fog = 1.0 - exp(-uFogDensity * uFogDensity * vDepth * vDepth);
    FragColor = vec4(vColor * falloff * uOpacity * (1.0 - fog), 1.0);
}
` + "\x00"

// infoLog reads a shader or program log through the matching pair of GL getters.
func infoLog(obj uint32, getiv func(uint32, uint32, *int32), getLog func(uint32, int32, *int32, *uint8)) string {
	var n int32
	getiv(obj, gl.INFO_LOG_LENGTH, &n)
	buf := strings.Repeat("\x00", int(n+1))
	getLog(obj, n, nil, gl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}

func compileShader(source string, kind uint32) (uint32, error) {
	sh := gl.CreateShader(kind)
	src, free := gl.Strs(source)
	gl.ShaderSource(sh, 1, src, nil)
	free()
	gl.CompileShader(sh)

	var ok int32
	if gl.GetShaderiv(sh, gl.COMPILE_STATUS, &ok); ok == gl.FALSE {
		msg := infoLog(sh, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("compile shader: %s", msg)
	}
	return sh, nil
}

// linkProgram builds the cloud program. Stage objects are released either way.
func linkProgram(vertSrc, fragSrc string) (uint32, error) {
	var stages []uint32
	defer func() {
		for _, sh := range stages {
			gl.DeleteShader(sh)
		}
	}()
	for _, st := range []struct {
		src  string
		kind uint32
	}{{vertSrc, gl.VERTEX_SHADER}, {fragSrc, gl.FRAGMENT_SHADER}} {
		sh, err := compileShader(st.src, st.kind)
		if err != nil {
			return 0, err
		}
		stages = append(stages, sh)
	}

	prog := gl.CreateProgram()
	for _, sh := range stages {
		gl.AttachShader(prog, sh)
	}
	gl.LinkProgram(prog)
	for _, sh := range stages {
		gl.DetachShader(prog, sh)
	}

	var ok int32
	if gl.GetProgramiv(prog, gl.LINK_STATUS, &ok); ok == gl.FALSE {
		msg := infoLog(prog, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link program: %s", msg)
	}
	return prog, nil
}
