package batch

import (
	"encoding/json"
	"os"
)

// Manifest describes a rendered sweep.
type Manifest struct {
	FPS    float64         `json:"fps"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Frames []ManifestEntry `json:"frames"`
}

// ManifestEntry represents one successfully rendered frame.
type ManifestEntry struct {
	Frame int     `json:"frame"`
	Time  float64 `json:"time"`
	Image string  `json:"image"`
}

// WriteManifest writes the frames that rendered successfully to path.
func WriteManifest(path string, cfg Config, fps float64, results []Result) error {
	m := Manifest{FPS: fps, Width: cfg.Width, Height: cfg.Height, Frames: []ManifestEntry{}}
	for _, r := range results {
		if !r.Success {
			continue
		}
		m.Frames = append(m.Frames, ManifestEntry{Frame: r.Frame, Time: r.Time, Image: r.File})
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
