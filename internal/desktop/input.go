//go:build !android

package desktop

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"ambient/internal/installation"
)

type Input struct {
	prevMouse map[glfw.MouseButton]bool
	prevKeys  map[glfw.Key]bool
}

func NewInput() *Input {
	return &Input{
		prevMouse: make(map[glfw.MouseButton]bool),
		prevKeys:  make(map[glfw.Key]bool),
	}
}

func (in *Input) JustPressed(window *glfw.Window, key glfw.Key) bool {
	down := window.GetKey(key) == glfw.Press
	jp := down && !in.prevKeys[key]
	in.prevKeys[key] = down
	return jp
}

func (in *Input) JustClicked(window *glfw.Window, btn glfw.MouseButton) bool {
	down := window.GetMouseButton(btn) == glfw.Press
	jp := down && !in.prevMouse[btn]
	in.prevMouse[btn] = down
	return jp
}

// shapeKeys maps the number row to the shapes in menu order.
var shapeKeys = [...]glfw.Key{glfw.Key1, glfw.Key2, glfw.Key3, glfw.Key4, glfw.Key5}

// Commands returns the control commands triggered by this frame's key and mouse edges.
func (in *Input) Commands(window *glfw.Window) []installation.Command {
	var cmds []installation.Command
	// Every edge must be sampled each frame so the previous-state maps stay current.
	click := in.JustClicked(window, glfw.MouseButtonLeft)
	space := in.JustPressed(window, glfw.KeySpace)
	if click || space {
		cmds = append(cmds, installation.Command{Kind: installation.CmdUnlock})
	}
	for i, key := range shapeKeys {
		if in.JustPressed(window, key) {
			cmds = append(cmds, installation.Command{Kind: installation.CmdSelectShape, Shape: installation.Shape(i)})
		}
	}
	if in.JustPressed(window, glfw.KeyM) {
		cmds = append(cmds, installation.Command{Kind: installation.CmdToggleMute})
	}
	return cmds
}
