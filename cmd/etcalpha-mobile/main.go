// Package main is the Android entry point of the ETC1 + separate alpha
// sample, built with gomobile. The app lifecycle maps onto the sample's
// init/step/uninit: becoming visible initializes, each paint steps and
// becoming invisible uninitializes.
package main

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/mobile/app"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/gl"

	"github.com/Faultbox/etcalpha/internal/assets"
	"github.com/Faultbox/etcalpha/internal/config"
	"github.com/Faultbox/etcalpha/internal/engine/scene"
	"github.com/Faultbox/etcalpha/internal/logger"
	"github.com/Faultbox/etcalpha/internal/mobile"
)

func main() {
	cfg := config.Default()
	if err := logger.Init("debug", ""); err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Assets are extracted to the app's private cache directory.
	cfg.Sample.ResourceDir = filepath.Join(os.TempDir(), "etcalpha")

	manager := assets.NewManager()
	manager.AddSource(assets.Builtin())
	manager.AddSource(mobile.AssetSource{})
	defer manager.Close()

	app.Main(func(a app.App) {
		var (
			glctx  gl.Context
			dev    *mobile.Device
			sample *scene.Sample
			sz     size.Event
		)

		for e := range a.Events() {
			switch e := a.Filter(e).(type) {
			case lifecycle.Event:
				switch e.Crosses(lifecycle.StageVisible) {
				case lifecycle.CrossOn:
					glctx, _ = e.DrawContext.(gl.Context)
					dev = mobile.NewDevice(glctx)
					sample = scene.NewSample(dev, manager, scene.FromConfig(cfg.Sample))
					if err := sample.Init(sz.WidthPx, sz.HeightPx); err != nil {
						logger.Error("init failed", zap.Error(err))
					}
					a.Send(paint.Event{})
				case lifecycle.CrossOff:
					if sample != nil {
						sample.Uninit()
					}
					if dev != nil {
						dev.Release()
					}
					sample, dev, glctx = nil, nil, nil
				}

			case size.Event:
				sz = e
				if sample != nil {
					sample.Resize(sz.WidthPx, sz.HeightPx)
				}

			case paint.Event:
				if glctx == nil || e.External {
					// As we are actively painting as fast as
					// we can (usually 60 FPS), skip any paint
					// events sent by the system.
					continue
				}
				if sample.Initialized() {
					if err := sample.Step(); err != nil {
						logger.Error("step failed", zap.Error(err))
					}
				}
				a.Publish()
				a.Send(paint.Event{})
			}
		}
	})
}
