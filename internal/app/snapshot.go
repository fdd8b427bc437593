package app

import (
	"fmt"
	"os"
	"path/filepath"

	"shibori/internal/layers"
	"shibori/internal/studio"
)

// SaveSnapshot writes the current display as <stem>.png and, when the
// session has finished layers, their data with pixels as <stem>.json. It
// returns the written paths.
func SaveSnapshot(s *studio.Session, dir, stem string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("app: snapshot dir: %w", err)
	}
	png, err := s.ExportRaster("png", 0)
	if err != nil {
		return nil, fmt.Errorf("app: export raster: %w", err)
	}
	pngPath := filepath.Join(dir, stem+".png")
	if err := os.WriteFile(pngPath, png, 0o644); err != nil {
		return nil, fmt.Errorf("app: write png: %w", err)
	}
	written := []string{pngPath}
	if len(s.Layers()) == 0 {
		return written, nil
	}
	data, err := s.ExportLayersData(layers.ExportOptions{IncludePixels: true})
	if err != nil {
		return written, fmt.Errorf("app: export layers: %w", err)
	}
	raw, err := data.JSON()
	if err != nil {
		return written, fmt.Errorf("app: encode layers: %w", err)
	}
	jsonPath := filepath.Join(dir, stem+".json")
	if err := os.WriteFile(jsonPath, raw, 0o644); err != nil {
		return written, fmt.Errorf("app: write layers: %w", err)
	}
	return append(written, jsonPath), nil
}

// LoadLayers replaces the session's finished layers with the data at path.
func LoadLayers(s *studio.Session, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("app: read layers: %w", err)
	}
	data, err := layers.ParseLayersData(raw)
	if err != nil {
		return err
	}
	return s.ImportLayersData(data)
}
