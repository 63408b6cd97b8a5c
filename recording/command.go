package recording

import (
	"fmt"

	"github.com/gogpu/quill/gpu"
)

// CommandType identifies a backend call.
type CommandType uint8

const (
	CmdCompileProgram CommandType = iota
	CmdDestroyProgram
	CmdUseProgram
	CmdSetUniform
	CmdNewBuffer
	CmdSetBufferData
	CmdBindBuffer
	CmdDestroyBuffer
	CmdCreateTexture
	CmdUpdateTexture
	CmdBindTexture
	CmdDestroyTexture
	CmdDraw
	CmdViewport
	CmdClear
	CmdBeginFrame
	CmdEndFrame

	cmdCount
)

var commandTypeNames = [...]string{
	CmdCompileProgram: "CompileProgram",
	CmdDestroyProgram: "DestroyProgram",
	CmdUseProgram:     "UseProgram",
	CmdSetUniform:     "SetUniform",
	CmdNewBuffer:      "NewBuffer",
	CmdSetBufferData:  "SetBufferData",
	CmdBindBuffer:     "BindBuffer",
	CmdDestroyBuffer:  "DestroyBuffer",
	CmdCreateTexture:  "CreateTexture",
	CmdUpdateTexture:  "UpdateTexture",
	CmdBindTexture:    "BindTexture",
	CmdDestroyTexture: "DestroyTexture",
	CmdDraw:           "Draw",
	CmdViewport:       "Viewport",
	CmdClear:          "Clear",
	CmdBeginFrame:     "BeginFrame",
	CmdEndFrame:       "EndFrame",
}

func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return fmt.Sprintf("CommandType(%d)", c)
}

// DrawCall is a snapshot of the state consumed by one Draw.
type DrawCall struct {
	Program gpu.Program
	// Texture is the bound texture, zero when none is bound.
	Texture gpu.Texture
	// TextureFormat is the format of Texture.
	TextureFormat gpu.PixelFormat
	First, Count  int
	// Uniforms maps uniform names to the values set at draw time.
	Uniforms map[string][]float32
	// Attributes maps vertex input names to the components fed to the
	// draw, Count rows of the bound width each.
	Attributes map[string][]float32
}

// Uniform returns the uniform value by name, or nil.
func (d DrawCall) Uniform(name string) []float32 {
	return d.Uniforms[name]
}

// TextureState is the recorded state of a texture.
type TextureState struct {
	Width, Height int
	Format        gpu.PixelFormat
	Filter        gpu.Filter
	// Pixels holds the current contents, tightly packed.
	Pixels    []byte
	Destroyed bool
	Updates   int
}

// At returns the bytes of pixel (x, y).
func (t *TextureState) At(x, y int) []byte {
	bpp := t.Format.BytesPerPixel()
	i := (y*t.Width + x) * bpp
	return t.Pixels[i : i+bpp]
}
