// Package app wires the window, renderer, camera, and viewer session into
// the interactive application loop.
package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/showroom/internal/assets"
	"github.com/Faultbox/showroom/internal/config"
	"github.com/Faultbox/showroom/internal/engine/camera"
	"github.com/Faultbox/showroom/internal/engine/debug"
	"github.com/Faultbox/showroom/internal/engine/input"
	"github.com/Faultbox/showroom/internal/engine/lighting"
	"github.com/Faultbox/showroom/internal/engine/renderer"
	"github.com/Faultbox/showroom/internal/engine/window"
	"github.com/Faultbox/showroom/internal/remote"
	"github.com/Faultbox/showroom/internal/viewer"
)

// statusInterval throttles window-title updates and inspector pushes.
const statusInterval = 250 * time.Millisecond

// App is the running viewer application.
type App struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitControls
	sun      lighting.Sun

	manager *assets.Manager
	session *viewer.Session
	watcher *assets.Watcher // nil unless watching a local source
	remote  *remote.Server  // nil unless an address is configured

	screenshots *debug.ScreenshotCapture
	slotKeys    map[string]string // canonical SDL key name -> configured slot key

	// Drawable size in pixels, tracked for the projection aspect ratio.
	width  int
	height int

	pendingShot bool
}

// New creates the application. The window comes first because it owns the
// OpenGL context everything else needs.
func New(cfg *config.Config) (*App, error) {
	slog.Info("initializing viewer",
		"models", len(cfg.Scene.ModelPaths),
		"slots", len(cfg.Scene.KeyModels),
	)

	a := &App{cfg: cfg}

	// Create window (this also creates the OpenGL context)
	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	a.width, a.height = a.window.DrawableSize()

	// Create renderer (AFTER window, since the OpenGL context must exist)
	a.renderer, err = renderer.New(renderer.Config{
		Width:        a.width,
		Height:       a.height,
		EnableShadow: cfg.Scene.EnableShadow,
		BarColor:     cfg.Overlay.BarColor,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.input = input.New()

	// Resolve slot keys against SDL's key table now, so a bad name in the
	// config fails at startup instead of being silently dead.
	slots, err := cfg.Slots()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.slotKeys = make(map[string]string, len(slots))
	for _, s := range slots {
		name, err := input.CanonicalKeyName(s.Key)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("key_models: %w", err)
		}
		a.slotKeys[name] = s.Key
	}

	a.camera = newCamera(cfg)
	a.sun = lighting.New(cfg.Scene.ShadowAngle, cfg.Scene.LightIntensity, cfg.Scene.AmbientIntensity)

	// Asset source: local directory, or HTTP when a base URL is set.
	var source assets.Source
	var dir *assets.DirSource
	if cfg.Assets.BaseURL != "" {
		source, err = assets.NewHTTPSource(cfg.Assets.BaseURL, cfg.Assets.FetchTimeout)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("asset source: %w", err)
		}
	} else {
		dir = assets.NewDirSource(cfg.Assets.Dir)
		source = dir
	}
	a.manager = assets.NewManager(source)

	viewerSlots := make([]viewer.SlotOptions, len(slots))
	for i, s := range slots {
		viewerSlots[i] = viewer.SlotOptions{Key: s.Key, Off: s.Off, On: s.On}
	}
	a.session, err = viewer.NewSession(viewer.Options{
		ModelPaths:    cfg.Scene.ModelPaths,
		Slots:         viewerSlots,
		Rotation:      mgl32.Vec3{cfg.Scene.Rotation[0], cfg.Scene.Rotation[1], cfg.Scene.Rotation[2]},
		AutoRotate:    cfg.Scene.AutoRotate,
		RotateSpeed:   cfg.Scene.RotationSpeed,
		CastShadow:    cfg.Scene.EnableShadow,
		ReceiveShadow: cfg.Scene.EnableShadow,
	}, a.manager.Load)
	if err != nil {
		a.Close()
		return nil, err
	}

	// Live reload only works against the local filesystem.
	if cfg.Assets.Watch {
		if dir == nil {
			slog.Warn("asset watching requires a local source, ignoring watch setting")
		} else if a.watcher, err = assets.NewWatcher(dir, watchPaths(cfg.Scene.ModelPaths, slots)); err != nil {
			slog.Warn("asset watcher unavailable", "error", err)
			a.watcher = nil
		}
	}

	if cfg.Remote.Addr != "" {
		a.remote = remote.New(cfg.Remote.Addr)
		if err := a.remote.Start(); err != nil {
			slog.Warn("inspector unavailable", "error", err)
			a.remote = nil
		}
	}

	a.screenshots = debug.NewScreenshotCapture(cfg.ScreenshotDir, "showroom")

	slog.Info("viewer initialized")
	return a, nil
}

// newCamera builds the orbit controls from the config.
func newCamera(cfg *config.Config) *camera.OrbitControls {
	c := camera.New()
	c.EnableDamping = cfg.Controls.EnableDamping
	c.DampingFactor = cfg.Controls.DampingFactor
	c.ScreenSpacePanning = cfg.Controls.ScreenSpacePanning
	c.MinDistance = cfg.Controls.MinDistance
	c.MaxDistance = cfg.Controls.MaxDistance
	c.MaxPolar = cfg.Controls.MaxPolarAngle
	c.EnablePan = cfg.Controls.EnablePan
	c.EnableZoom = cfg.Controls.EnableZoom

	p := cfg.Scene.CameraPosition
	c.SetPosition(mgl32.Vec3{p[0], p[1], p[2]})
	return c
}

// watchPaths collects every asset path the session can ever load.
func watchPaths(models []string, slots []config.KeySlot) []string {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, p := range models {
		add(p)
	}
	for _, s := range slots {
		add(s.Off)
		add(s.On)
	}
	return paths
}

// Run starts the main loop and blocks until quit.
func (a *App) Run() error {
	a.running = true
	a.session.Start()

	// Timing
	lastTime := time.Now()
	var statusTime time.Time // zero forces an immediate title update
	frameCount := 0
	fpsTimer := time.Now()

	slog.Info("starting viewer loop")

	for a.running {
		// Calculate delta time
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		// 1. Process input
		if a.input.Update() {
			// Quit event received
			break
		}
		for _, event := range a.input.Events() {
			a.handleEvent(event)
		}

		// 2. Update scene state
		a.update(dt)

		// 3. Render
		a.render()

		// 4. Present (swap buffers)
		a.window.SwapBuffers()

		// Status surfaces: window title and the inspector feed
		if now.Sub(statusTime) >= statusInterval {
			statusTime = now
			a.publishStatus()
		}

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			slog.Debug("fps", "count", frameCount, "dt", fmt.Sprintf("%.2fms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}

		a.limitFrameRate(now)
	}

	return nil
}

// Close releases every subsystem in reverse creation order. Safe to call
// on a partially constructed app.
func (a *App) Close() {
	slog.Info("closing viewer")

	if a.remote != nil {
		a.remote.Close()
	}
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.session != nil {
		a.session.Close()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

func (a *App) handleEvent(event input.Event) {
	switch event.Type {
	case input.EventQuit:
		a.running = false

	case input.EventWindowResize:
		a.width, a.height = a.window.DrawableSize()
		a.renderer.Resize(a.width, a.height)

	case input.EventKeyDown:
		a.handleKeyDown(event)

	case input.EventKeyUp:
		if key, ok := a.slotKeys[event.KeyName]; ok {
			a.session.KeyUp(key)
		}

	case input.EventMouseMove:
		if !a.cfg.Controls.Enabled {
			return
		}
		if event.LeftHeld() {
			a.camera.Rotate(float32(event.RelX), float32(event.RelY))
		} else if event.RightHeld() {
			a.camera.Pan(float32(event.RelX), float32(event.RelY))
		}

	case input.EventMouseWheel:
		if a.cfg.Controls.Enabled {
			a.camera.Zoom(event.WheelY)
		}
	}
}

func (a *App) handleKeyDown(event input.Event) {
	if event.KeyName == "Escape" {
		a.running = false
		return
	}

	// Configured slot keys win over the built-in bindings. Auto-repeat
	// passes through; the session treats a held key as a single press.
	if key, ok := a.slotKeys[event.KeyName]; ok {
		a.session.KeyDown(key)
		return
	}
	if event.Repeat {
		return
	}

	switch event.KeyName {
	case "F12":
		a.pendingShot = true
	case "F":
		// The normalized scene fits a 2-unit cube at the origin.
		a.camera.FitToBounds(mgl32.Vec3{}, 2)
	}
}

func (a *App) update(dt float32) {
	// Apply file-change notifications before ticking so a reload started
	// this frame reads fresh bytes instead of the cached ones.
	if a.watcher != nil {
	drain:
		for {
			select {
			case path := <-a.watcher.C:
				a.manager.Invalidate(path)
				if a.session.Reload(path) {
					slog.Info("asset changed, reloading", "path", path)
				}
			default:
				break drain
			}
		}
	}

	a.session.Tick(dt)
	a.camera.Update()
}

func (a *App) render() {
	a.renderer.Begin()

	a.renderer.Draw(a.session.DrawItems(), renderer.DrawParams{
		View:       a.camera.ViewMatrix(),
		Projection: a.camera.ProjectionMatrix(a.aspect()),
		Sun:        a.sun,
		ShowBounds: a.cfg.Debug,
	})

	if a.cfg.Overlay.Enabled && !a.session.Ready() {
		a.renderer.DrawProgress(a.session.Progress())
	}

	// Screenshots read the back buffer, so capture before the swap.
	if a.pendingShot {
		a.pendingShot = false
		pixels, w, h := a.renderer.CapturePixels()
		if path, err := a.screenshots.CaptureFromPixels(pixels, w, h); err != nil {
			slog.Error("screenshot failed", "error", err)
		} else {
			slog.Info("screenshot saved", "path", path)
		}
	}
}

func (a *App) publishStatus() {
	st := a.session.Status()
	a.window.SetTitle(titleFor(a.cfg.Window.Title, st))
	if a.remote != nil {
		a.remote.Publish(st)
	}
}

// titleFor renders the window title for the current session state.
func titleFor(base string, st viewer.Status) string {
	switch {
	case st.Error != "":
		return fmt.Sprintf("%s [load failed: %s]", base, st.Error)
	case !st.Ready:
		return fmt.Sprintf("%s [loading %d%%]", base, st.Progress)
	default:
		return fmt.Sprintf("%s [%d parts, %d tris]", base, st.Parts, st.Triangles)
	}
}

func (a *App) aspect() float32 {
	if a.height == 0 {
		return 1
	}
	return float32(a.width) / float32(a.height)
}

// limitFrameRate sleeps out the rest of the frame budget when fps_limit
// is set. With VSync on, the swap already paces the loop.
func (a *App) limitFrameRate(frameStart time.Time) {
	if a.cfg.Window.FPSLimit <= 0 {
		return
	}
	budget := time.Second / time.Duration(a.cfg.Window.FPSLimit)
	if elapsed := time.Since(frameStart); elapsed < budget {
		time.Sleep(budget - elapsed)
	}
}
