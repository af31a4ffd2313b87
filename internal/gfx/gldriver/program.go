package gldriver

import (
	"fmt"

	"golang.org/x/mobile/gl"

	"github.com/samdwyer/mazeview/internal/gfx"
)

const quadVert = `
attribute vec2 aPos;
uniform vec2 uRes;
void main() {
  vec2 clip = aPos / uRes * 2.0 - 1.0;
  gl_Position = vec4(clip.x, -clip.y, 0.0, 1.0);
}`

const quadFrag = `
precision mediump float;
uniform vec4 uColor;
void main() {
  gl_FragColor = uColor;
}`

const blitVert = `
attribute vec2 aPos;
attribute vec2 aUV;
varying vec2 vUV;
void main() {
  vUV = aUV;
  gl_Position = vec4(aPos, 0.0, 1.0);
}`

const blitFrag = `
precision mediump float;
varying vec2 vUV;
uniform sampler2D uTex;
void main() {
  gl_FragColor = texture2D(uTex, vUV);
}`

// quadProgram fills pixel-space rectangles with a flat color. Pixel y grows
// downward; the shader flips it into clip space.
type quadProgram struct {
	prog   gl.Program
	vbo    gl.Buffer
	aPos   gl.Attrib
	uRes   gl.Uniform
	uColor gl.Uniform

	width, height float32
}

func newQuadProgram(glctx gl.Context) (quadProgram, error) {
	prog, err := linkProgram(glctx, quadVert, quadFrag)
	if err != nil {
		return quadProgram{}, err
	}
	return quadProgram{
		prog:   prog,
		vbo:    glctx.CreateBuffer(),
		aPos:   glctx.GetAttribLocation(prog, "aPos"),
		uRes:   glctx.GetUniformLocation(prog, "uRes"),
		uColor: glctx.GetUniformLocation(prog, "uColor"),
	}, nil
}

func (p *quadProgram) release(glctx gl.Context) {
	if p.prog.Value != 0 {
		glctx.DeleteProgram(p.prog)
	}
	if p.vbo.Value != 0 {
		glctx.DeleteBuffer(p.vbo)
	}
}

// quadVertices expands each quad into two triangles.
func quadVertices(quads []gfx.Quad) []float32 {
	verts := make([]float32, 0, len(quads)*12)
	for _, q := range quads {
		x0, y0, x1, y1 := q.X, q.Y, q.X+q.W, q.Y+q.H
		verts = append(verts,
			x0, y0, x1, y0, x0, y1,
			x0, y1, x1, y0, x1, y1,
		)
	}
	return verts
}

func (p *quadProgram) draw(glctx gl.Context, quads []gfx.Quad, c gfx.Color) {
	verts := quadVertices(quads)
	glctx.UseProgram(p.prog)
	glctx.Uniform2f(p.uRes, p.width, p.height)
	glctx.Uniform4f(p.uColor, c.R, c.G, c.B, c.A)
	glctx.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	glctx.BufferData(gl.ARRAY_BUFFER, f32bytes(verts), gl.STREAM_DRAW)
	glctx.EnableVertexAttribArray(p.aPos)
	glctx.VertexAttribPointer(p.aPos, 2, gl.FLOAT, false, 0, 0)
	glctx.DrawArrays(gl.TRIANGLES, 0, len(verts)/2)
	glctx.DisableVertexAttribArray(p.aPos)
}

// blitProgram draws read-back pixels as a full-screen textured quad.
type blitProgram struct {
	prog gl.Program
	vbo  gl.Buffer
	tex  gl.Texture
	aPos gl.Attrib
	aUV  gl.Attrib
	uTex gl.Uniform
}

func newBlitProgram(glctx gl.Context) (blitProgram, error) {
	prog, err := linkProgram(glctx, blitVert, blitFrag)
	if err != nil {
		return blitProgram{}, err
	}
	verts := []float32{
		-1, -1, 0, 0,
		1, -1, 1, 0,
		-1, 1, 0, 1,
		1, 1, 1, 1,
	}
	vbo := glctx.CreateBuffer()
	glctx.BindBuffer(gl.ARRAY_BUFFER, vbo)
	glctx.BufferData(gl.ARRAY_BUFFER, f32bytes(verts), gl.STATIC_DRAW)

	tex := glctx.CreateTexture()
	glctx.BindTexture(gl.TEXTURE_2D, tex)
	glctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	glctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	glctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	glctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	return blitProgram{
		prog: prog,
		vbo:  vbo,
		tex:  tex,
		aPos: glctx.GetAttribLocation(prog, "aPos"),
		aUV:  glctx.GetAttribLocation(prog, "aUV"),
		uTex: glctx.GetUniformLocation(prog, "uTex"),
	}, nil
}

func (p *blitProgram) release(glctx gl.Context) {
	if p.prog.Value != 0 {
		glctx.DeleteProgram(p.prog)
	}
	if p.vbo.Value != 0 {
		glctx.DeleteBuffer(p.vbo)
	}
	if p.tex.Value != 0 {
		glctx.DeleteTexture(p.tex)
	}
}

func (p *blitProgram) draw(glctx gl.Context, pix []byte, width, height int) {
	glctx.UseProgram(p.prog)
	glctx.ActiveTexture(gl.TEXTURE0)
	glctx.BindTexture(gl.TEXTURE_2D, p.tex)
	glctx.TexImage2D(gl.TEXTURE_2D, 0, int(gl.RGBA), width, height, gl.RGBA, gl.UNSIGNED_BYTE, pix)
	glctx.Uniform1i(p.uTex, 0)

	glctx.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	glctx.EnableVertexAttribArray(p.aPos)
	glctx.EnableVertexAttribArray(p.aUV)
	glctx.VertexAttribPointer(p.aPos, 2, gl.FLOAT, false, 16, 0)
	glctx.VertexAttribPointer(p.aUV, 2, gl.FLOAT, false, 16, 8)
	glctx.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	glctx.DisableVertexAttribArray(p.aPos)
	glctx.DisableVertexAttribArray(p.aUV)
}

func compileShader(glctx gl.Context, kind gl.Enum, src string) (gl.Shader, error) {
	sh := glctx.CreateShader(kind)
	glctx.ShaderSource(sh, src)
	glctx.CompileShader(sh)
	if glctx.GetShaderi(sh, gl.COMPILE_STATUS) == 0 {
		log := glctx.GetShaderInfoLog(sh)
		glctx.DeleteShader(sh)
		return gl.Shader{}, fmt.Errorf("gldriver: shader compile failed: %s", log)
	}
	return sh, nil
}

func linkProgram(glctx gl.Context, vertSrc, fragSrc string) (gl.Program, error) {
	vs, err := compileShader(glctx, gl.VERTEX_SHADER, vertSrc)
	if err != nil {
		return gl.Program{}, err
	}
	fs, err := compileShader(glctx, gl.FRAGMENT_SHADER, fragSrc)
	if err != nil {
		glctx.DeleteShader(vs)
		return gl.Program{}, err
	}
	prog := glctx.CreateProgram()
	glctx.AttachShader(prog, vs)
	glctx.AttachShader(prog, fs)
	glctx.LinkProgram(prog)
	glctx.DeleteShader(vs)
	glctx.DeleteShader(fs)
	if glctx.GetProgrami(prog, gl.LINK_STATUS) == 0 {
		log := glctx.GetProgramInfoLog(prog)
		glctx.DeleteProgram(prog)
		return gl.Program{}, fmt.Errorf("gldriver: program link failed: %s", log)
	}
	return prog, nil
}
