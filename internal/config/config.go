// Package config handles viewer and tool configuration loading.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Textures TexturesConfig `yaml:"textures"`
	Export   ExportConfig   `yaml:"export"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// ViewerConfig holds camera and shading settings.
type ViewerConfig struct {
	Background    [3]float32 `yaml:"background"`
	Ambient       [3]float32 `yaml:"ambient"`
	OrbitSpeed    float32    `yaml:"orbit_speed"`
	ZoomSpeed     float32    `yaml:"zoom_speed"`
	UVSet         int        `yaml:"uv_set"`
	ShowFrameTime bool       `yaml:"show_frame_time"`
}

// TexturesConfig controls how external texture references are resolved.
type TexturesConfig struct {
	// SearchDirs are tried in order when a reference names a relative URI.
	SearchDirs []string `yaml:"search_dirs"`
	// FailOnMissing turns an unresolvable reference into a load error
	// instead of rendering the fallback texture.
	FailOnMissing bool `yaml:"fail_on_missing"`
}

// ExportConfig holds glTF export settings.
type ExportConfig struct {
	// EmbedTextures inlines resolved images into the document instead of
	// keeping URI references.
	EmbedTextures bool `yaml:"embed_textures"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Viewer: ViewerConfig{
			Background: [3]float32{0.12, 0.12, 0.14},
			Ambient:    [3]float32{0.25, 0.25, 0.25},
			OrbitSpeed: 0.01,
			ZoomSpeed:  0.1,
			UVSet:      0,
		},
		Textures: TexturesConfig{
			SearchDirs: []string{"."},
		},
		Export: ExportConfig{
			EmbedTextures: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
