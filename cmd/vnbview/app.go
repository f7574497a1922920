package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/vnbformat/vnb-go/internal/config"
	"github.com/vnbformat/vnb-go/internal/engine/camera"
	"github.com/vnbformat/vnb-go/internal/engine/material"
	"github.com/vnbformat/vnb-go/internal/engine/model"
	"github.com/vnbformat/vnb-go/internal/engine/scene"
	"github.com/vnbformat/vnb-go/internal/engine/window"
	"github.com/vnbformat/vnb-go/internal/logger"
	"github.com/vnbformat/vnb-go/pkg/vnb"
)

type viewer struct {
	cfg      *config.Config
	window   *window.Window
	renderer *scene.Renderer
	model    *scene.Model
	cam      *camera.OrbitCamera
	radius   float32
	running  bool
}

func newViewer(cfg *config.Config, path string) (*viewer, error) {
	container, err := loadContainer(cfg, path)
	if err != nil {
		return nil, err
	}

	mesh, err := model.BuildMesh(container, model.BuildOptions{UVSet: cfg.Viewer.UVSet})
	if err != nil {
		return nil, fmt.Errorf("building mesh: %w", err)
	}
	materials, err := material.Build(container)
	if err != nil {
		return nil, fmt.Errorf("building materials: %w", err)
	}

	logger.Info("container loaded",
		zap.String("path", path),
		zap.String("name", mesh.Name),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("submeshes", len(mesh.Groups)),
		zap.Int("materials", len(materials)),
	)

	v := &viewer{cfg: cfg}

	title := mesh.Name
	if title == "" {
		title = filepath.Base(path)
	}
	v.window, err = window.New(window.Config{
		Title:      "vnbview - " + title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	if err := gl.Init(); err != nil {
		v.window.Close()
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	v.renderer, err = scene.NewRenderer()
	if err != nil {
		v.window.Close()
		return nil, err
	}

	v.model, err = v.renderer.Upload(mesh, materials)
	if err != nil {
		v.renderer.Destroy()
		v.window.Close()
		return nil, err
	}

	v.cam = camera.NewOrbitCamera()
	v.cam.DragSensitivity = cfg.Viewer.OrbitSpeed
	v.cam.ZoomSensitivity = cfg.Viewer.ZoomSpeed
	v.radius = mesh.Bounds.Radius()
	v.cam.FitToBounds(mesh.Bounds.Center(), v.radius)

	gl.Enable(gl.DEPTH_TEST)

	return v, nil
}

// loadContainer decodes the file, resolving external texture refs against
// the configured search directories.
func loadContainer(cfg *config.Config, path string) (*vnb.MeshContainer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	opts := []vnb.DecodeOption{vnb.WithResolver(func(uri string) ([]byte, bool) {
		for _, dir := range cfg.Textures.SearchDirs {
			payload, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(uri)))
			if err == nil {
				return payload, true
			}
			logger.Debug("texture candidate miss",
				zap.String("uri", uri), zap.String("dir", dir))
		}
		return nil, false
	})}
	if cfg.Textures.FailOnMissing {
		opts = append(opts, vnb.WithResolvePolicy(vnb.ResolveErrorMissing))
	}

	c, err := vnb.Decode(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return c, nil
}

// Run drives the event and render loop until quit.
func (v *viewer) Run() error {
	v.running = true

	bg := v.cfg.Viewer.Background
	light := scene.Light{
		Direction: mgl32.Vec3{-0.4, -1, -0.3}.Normalize(),
		Ambient:   mgl32.Vec3(v.cfg.Viewer.Ambient),
	}

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		v.handleEvents()

		width, height := v.window.GetSize()
		gl.Viewport(0, 0, int32(width), int32(height))
		gl.ClearColor(bg[0], bg[1], bg[2], 1)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		aspect := float32(width) / float32(height)
		proj := mgl32.Perspective(mgl32.DegToRad(45), aspect, v.radius*0.01, v.radius*100)
		viewProj := proj.Mul4(v.cam.ViewMatrix())

		v.renderer.Render(v.model, viewProj, light)
		v.window.SwapBuffers()

		frameCount++
		if v.cfg.Viewer.ShowFrameTime && time.Since(fpsTimer) >= time.Second {
			logger.Debug("frame stats",
				zap.Int("fps", frameCount),
				zap.String("frame", fmt.Sprintf("%.2fms", dt*1000)))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (v *viewer) handleEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			v.running = false

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN {
				switch e.Keysym.Scancode {
				case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
					v.running = false
				case sdl.SCANCODE_F:
					v.cam.FitToBounds(v.model.Bounds.Center(), v.radius)
				}
			}

		case *sdl.MouseMotionEvent:
			switch {
			case e.State&sdl.ButtonLMask() != 0:
				v.cam.HandleDrag(float32(e.XRel), float32(e.YRel))
			case e.State&(sdl.ButtonMMask()|sdl.ButtonRMask()) != 0:
				v.cam.HandlePan(float32(e.XRel), float32(e.YRel))
			}

		case *sdl.MouseWheelEvent:
			v.cam.HandleZoom(float32(e.Y))
		}
	}
}

// Close releases GPU and window resources.
func (v *viewer) Close() {
	if v.model != nil {
		v.model.Destroy()
	}
	if v.renderer != nil {
		v.renderer.Destroy()
	}
	if v.window != nil {
		v.window.Close()
	}
}
