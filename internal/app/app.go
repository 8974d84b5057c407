// Package app runs the sample on the desktop: an SDL2 window, the OpenGL
// renderer and the init/step/uninit lifecycle driven by the event loop.
package app

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/etcalpha/internal/assets"
	"github.com/Faultbox/etcalpha/internal/config"
	"github.com/Faultbox/etcalpha/internal/engine/renderer"
	"github.com/Faultbox/etcalpha/internal/engine/scene"
	"github.com/Faultbox/etcalpha/internal/engine/shader"
	"github.com/Faultbox/etcalpha/internal/engine/window"
	"github.com/Faultbox/etcalpha/internal/logger"
)

// App is the desktop sample instance.
type App struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	assets   *assets.Manager
	sample   *scene.Sample
	watcher  *shader.Watcher
	log      *zap.Logger
}

// New creates the window, the renderer and the sample. Init is not
// called until Run.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		config: cfg,
		log:    logger.Named("app"),
	}

	a.log.Info("initializing sample",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	var err error
	a.assets, err = assets.NewManagerFromConfig(cfg.Sample)
	if err != nil {
		return nil, fmt.Errorf("failed to open assets: %w", err)
	}

	// Create window (this also creates OpenGL context)
	a.window, err = window.New(window.FromConfig(cfg.Window))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	width, height := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{Width: width, Height: height})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.sample = scene.NewSample(a.renderer, a.assets, scene.FromConfig(cfg.Sample))
	return a, nil
}

// Run initializes the sample and renders until the window is closed.
func (a *App) Run() error {
	width, height := a.window.DrawableSize()
	if err := a.sample.Init(width, height); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer a.sample.Uninit()

	if a.config.Sample.WatchShaders {
		if err := a.watchShaders(); err != nil {
			a.log.Warn("shader hot reload disabled", zap.Error(err))
		}
	}

	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting render loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		ev := a.window.PollEvents()
		if ev.Quit {
			a.running = false
			break
		}
		if ev.Resized {
			a.sample.Resize(a.window.DrawableSize())
		}
		if ev.Reload || (a.watcher != nil && a.watcher.Changed()) {
			a.reloadShaders()
		}

		if err := a.sample.Step(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount), zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) watchShaders() error {
	cfg := a.sample.Config()
	w, err := shader.NewWatcher(
		filepath.Join(cfg.ResourceDir, cfg.VertexShader),
		filepath.Join(cfg.ResourceDir, cfg.FragmentShader),
	)
	if err != nil {
		return err
	}
	a.watcher = w
	a.log.Info("watching shaders", zap.String("dir", cfg.ResourceDir))
	return nil
}

// reloadShaders keeps the running program when the edited sources do not
// build.
func (a *App) reloadShaders() {
	if err := a.sample.ReloadShaders(); err != nil {
		a.log.Error("shader reload failed", zap.Error(err))
	}
}

// Close cleans up sample resources.
func (a *App) Close() {
	a.log.Info("closing sample")

	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.sample != nil {
		a.sample.Uninit()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
	if a.assets != nil {
		hits, misses := a.assets.Stats()
		a.log.Debug("asset cache", zap.Int("hits", hits), zap.Int("misses", misses))
		a.assets.Close()
	}
}
