package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/etcalpha/internal/engine/texture"
	"github.com/Faultbox/etcalpha/internal/logger"
	"github.com/Faultbox/etcalpha/pkg/formats"
)

// ErrNotInitialized is returned by Step before Init succeeded.
var ErrNotInitialized = errors.New("sample not initialized")

// AssetFetcher makes sure a packaged file exists in dir before it is
// opened, returning its local path.
type AssetFetcher interface {
	Fetch(dir, name string) (string, error)
}

// Sample drives a Scene through the host's init/step/uninit entry points.
// All methods must be called from the rendering thread.
type Sample struct {
	dev    Device
	assets AssetFetcher
	cfg    Config
	scene  *Scene
	log    *zap.Logger
}

// NewSample creates a sample. assets may be nil when every file already
// lives in cfg.ResourceDir.
func NewSample(dev Device, assets AssetFetcher, cfg Config) *Sample {
	return &Sample{
		dev:    dev,
		assets: assets,
		cfg:    cfg,
		log:    logger.Named("sample"),
	}
}

// Init materializes the assets and sets the scene up for a width x height
// surface. A previous scene is released first.
func (s *Sample) Init(width, height int) error {
	s.log.Debug("init", zap.Int("width", width), zap.Int("height", height))
	s.Uninit()

	if err := s.fetchAssets(); err != nil {
		return err
	}

	sc, err := Setup(s.dev, s.cfg)
	if err != nil {
		return err
	}
	sc.Resize(width, height)
	s.scene = sc
	return nil
}

// fetchAssets materializes both shaders, the RGB mip levels and the alpha
// image. The number of RGB levels follows from the base level's size, the
// same way LoadCompressedMipmaps counts them.
func (s *Sample) fetchAssets() error {
	if s.assets == nil {
		return nil
	}

	names := []string{s.cfg.VertexShader, s.cfg.FragmentShader}
	for _, name := range names {
		if _, err := s.fetch(name); err != nil {
			return err
		}
	}

	base, err := s.fetch(texture.MipPath(s.cfg.TexturePrefix, 0, s.cfg.ImageExt))
	if err != nil {
		return err
	}
	pkm, err := formats.ParsePKMFile(base)
	if err != nil {
		return fmt.Errorf("reading base level: %w", err)
	}

	levels := texture.ChainLength(int(pkm.Header.Width), int(pkm.Header.Height), s.cfg.MipLevels)
	for level := 1; level < levels; level++ {
		if _, err := s.fetch(texture.MipPath(s.cfg.TexturePrefix, level, s.cfg.ImageExt)); err != nil {
			return err
		}
	}

	_, err = s.fetch(s.cfg.AlphaName())
	return err
}

func (s *Sample) fetch(name string) (string, error) {
	path, err := s.assets.Fetch(s.cfg.ResourceDir, name)
	if err != nil {
		return "", fmt.Errorf("fetching asset %s: %w", name, err)
	}
	s.log.Debug("asset ready", zap.String("path", path))
	return path, nil
}

// Step renders one frame.
func (s *Sample) Step() error {
	if s.scene == nil {
		return ErrNotInitialized
	}
	s.scene.Render()
	return nil
}

// Uninit releases the scene. It is safe to call at any time.
func (s *Sample) Uninit() {
	if s.scene == nil {
		return
	}
	s.scene.Close()
	s.scene = nil
	s.log.Debug("uninit")
}

// Resize updates the viewport of an initialized sample.
func (s *Sample) Resize(width, height int) {
	if s.scene != nil {
		s.scene.Resize(width, height)
	}
}

// ReloadShaders recompiles the program from the resource directory. The
// running program is kept on failure.
func (s *Sample) ReloadShaders() error {
	if s.scene == nil {
		return ErrNotInitialized
	}
	return s.scene.ReloadProgram()
}

// Initialized reports whether Init succeeded and Uninit was not called
// since.
func (s *Sample) Initialized() bool {
	return s.scene != nil
}

// Config returns the sample configuration.
func (s *Sample) Config() Config {
	return s.cfg
}
