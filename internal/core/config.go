package core

// RuntimeConfig contains configuration passed to the engine at initialization.
type RuntimeConfig struct {
	ScreenW   int // Virtual resolution width in pixels
	ScreenH   int // Virtual resolution height in pixels
	FrameRate int // Map engine frames per second (default 60)
}

// DefaultConfig returns a RuntimeConfig with the classic Sphere resolution.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:   320,
		ScreenH:   240,
		FrameRate: 60,
	}
}
