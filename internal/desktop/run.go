//go:build !android

package desktop

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"ambient/internal/installation"
)

// minimizedWait is how long an iconified window blocks for events, in seconds.
const minimizedWait = 0.05

// idleWait reports whether a framebuffer of this size cannot be drawn, and how long
// to block for events instead. Without a swap nothing else paces the loop.
func idleWait(fbW, fbH int) (float64, bool) {
	if fbW <= 0 || fbH <= 0 {
		return minimizedWait, true
	}
	return 0, false
}

type Options struct {
	Width, Height int
	Logger        *slog.Logger
}

// Run opens the window and drives app until the window closes or ctx is done.
// It must be called from the main goroutine.
func Run(ctx context.Context, app *installation.App, opts Options) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = installation.WindowWidth, installation.WindowHeight
	}

	window, err := initWindow(opts.Width, opts.Height)
	if err != nil {
		return err
	}
	defer glfw.Terminate()
	defer window.Destroy()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.Enable(gl.MULTISAMPLE)
	gl.ClearColor(0, 0, 0, 1)

	field := app.Field()
	rend, err := NewRenderer(field.Len())
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	defer rend.Destroy()
	logger.Info("window open", "particles", field.Len(), "gl", gl.GoStr(gl.GetString(gl.VERSION)))

	input := NewInput()
	title := ""

	last := glfw.GetTime()
	for !window.ShouldClose() {
		if ctx.Err() != nil {
			window.SetShouldClose(true)
			continue
		}
		now := glfw.GetTime()
		dt := now - last
		last = now
		if dt > installation.MaxFrameDelta {
			dt = installation.MaxFrameDelta
		}

		glfw.PollEvents()
		if window.GetKey(glfw.KeyEscape) == glfw.Press {
			window.SetShouldClose(true)
			continue
		}

		for _, c := range input.Commands(window) {
			if err := app.Submit(c); err != nil {
				logger.Debug("input dropped", "err", err)
			}
		}

		app.Frame(dt)

		fbW, fbH := window.GetFramebufferSize()
		if wait, idle := idleWait(fbW, fbH); idle {
			glfw.WaitEventsTimeout(wait)
			continue
		}
		if field.TakeDirty() {
			rend.Upload(field.Positions(), field.Colors())
		}
		rend.Draw(app.Camera(), fbW, fbH)
		window.SwapBuffers()

		if t := app.Status().Title(); t != title {
			window.SetTitle(t)
			title = t
		}
	}
	logger.Info("window closed")
	return nil
}
