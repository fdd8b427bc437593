package layers

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/klauspost/compress/zstd"

	"shibori/internal/core"
	"shibori/internal/surface"
)

// ImportedOperation tags layers restored without pixel data.
const ImportedOperation = "imported"

// ErrCorruptLayerData is returned when imported layer data cannot be applied.
var ErrCorruptLayerData = errors.New("layers: corrupt layer data")

// ExportOptions controls ExportLayersData.
type ExportOptions struct {
	// IncludePixels embeds each layer's premultiplied RGBA buffer,
	// zstd-compressed.
	IncludePixels bool
}

// LayersData is the serializable description of a stack.
type LayersData struct {
	Width  int           `json:"width,omitempty"`
	Height int           `json:"height,omitempty"`
	Layers []LayerRecord `json:"layers"`
}

// LayerRecord describes one layer.
type LayerRecord struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Visible             bool           `json:"visible"`
	Opacity             float64        `json:"opacity"`
	Order               int            `json:"order"`
	SourceOperationType string         `json:"sourceOperationType"`
	Params              map[string]any `json:"params"`
	Pixels              []byte         `json:"pixels,omitempty"`
}

// JSON encodes d.
func (d LayersData) JSON() ([]byte, error) {
	return json.Marshal(d)
}

// ParseLayersData decodes JSON produced by LayersData.JSON.
func ParseLayersData(raw []byte) (LayersData, error) {
	var d LayersData
	if err := json.Unmarshal(raw, &d); err != nil {
		return LayersData{}, fmt.Errorf("%w: %v", ErrCorruptLayerData, err)
	}
	return d, nil
}

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecodeAllCapLimit(true))
)

// decodePixels inflates one layer buffer of exactly n bytes. Frames that
// declare or produce any other size are rejected without decoding past n.
func decodePixels(blob []byte, n int) ([]byte, error) {
	var hdr zstd.Header
	if err := hdr.Decode(blob); err != nil {
		return nil, err
	}
	if hdr.HasFCS && hdr.FrameContentSize != uint64(n) {
		return nil, fmt.Errorf("frame holds %d bytes, want %d", hdr.FrameContentSize, n)
	}
	pix, err := zstdDecoder.DecodeAll(blob, make([]byte, 0, n))
	if err != nil {
		return nil, err
	}
	if len(pix) != n {
		return nil, fmt.Errorf("got %d bytes, want %d", len(pix), n)
	}
	return pix, nil
}

// ExportLayersData describes the stack in ascending order.
func (s *Stack) ExportLayersData(opts ExportOptions) (LayersData, error) {
	d := LayersData{Width: s.size.W, Height: s.size.H, Layers: make([]LayerRecord, 0, len(s.layers))}
	var buf []byte
	for i, l := range s.layers {
		rec := LayerRecord{
			ID:                  l.id,
			Name:                l.name,
			Visible:             l.visible,
			Opacity:             l.opacity,
			Order:               i,
			SourceOperationType: l.opType,
			Params:              maps.Clone(map[string]any(l.params)),
		}
		if rec.Params == nil {
			rec.Params = map[string]any{}
		}
		if opts.IncludePixels {
			if !surface.Available(l.surf) {
				return LayersData{}, fmt.Errorf("layers: export %s: %w", l.id, surface.ErrSurfaceUnavailable)
			}
			n := surface.BufferLen(l.surf.Size())
			if len(buf) != n {
				buf = make([]byte, n)
			}
			if err := l.surf.ReadPixels(buf); err != nil {
				return LayersData{}, fmt.Errorf("layers: export %s: %w", l.id, err)
			}
			rec.Pixels = zstdEncoder.EncodeAll(buf, nil)
		}
		d.Layers = append(d.Layers, rec)
	}
	return d, nil
}

// ImportLayersData replaces the stack contents with d. Records are applied
// by ascending order and renumbered contiguously. Records without pixels get
// a blank surface and the ImportedOperation tag, with their original type
// kept under the "sourceOperationType" param. On error the stack is left
// unchanged.
func (s *Stack) ImportLayersData(d LayersData) error {
	if d.Width != 0 && d.Height != 0 && (d.Width != s.size.W || d.Height != s.size.H) {
		return fmt.Errorf("%w: size %dx%d, stack %dx%d", ErrCorruptLayerData, d.Width, d.Height, s.size.W, s.size.H)
	}
	recs := slices.Clone(d.Layers)
	slices.SortStableFunc(recs, func(a, b LayerRecord) int { return a.Order - b.Order })

	seen := make(map[string]bool, len(recs))
	restored := make([]*layer, 0, len(recs))
	for _, rec := range recs {
		if rec.ID == "" || seen[rec.ID] {
			return fmt.Errorf("%w: missing or duplicate id %q", ErrCorruptLayerData, rec.ID)
		}
		seen[rec.ID] = true
		canvas := surface.NewCanvas(s.size.W, s.size.H)
		l := &layer{
			id:      rec.ID,
			name:    rec.Name,
			surf:    canvas,
			visible: rec.Visible,
			opacity: core.Clamp01(rec.Opacity),
			opType:  rec.SourceOperationType,
			params:  Params(maps.Clone(rec.Params)),
		}
		if len(rec.Pixels) > 0 {
			pix, err := decodePixels(rec.Pixels, surface.BufferLen(s.size))
			if err != nil {
				return fmt.Errorf("%w: layer %s: %v", ErrCorruptLayerData, rec.ID, err)
			}
			if err := canvas.WritePixels(pix); err != nil {
				return fmt.Errorf("%w: layer %s: %v", ErrCorruptLayerData, rec.ID, err)
			}
		} else {
			if l.params == nil {
				l.params = Params{}
			}
			l.params["sourceOperationType"] = rec.SourceOperationType
			l.opType = ImportedOperation
		}
		restored = append(restored, l)
	}
	for _, l := range s.layers {
		if disp, ok := l.surf.(interface{ Dispose() }); ok {
			disp.Dispose()
		}
	}
	s.layers = restored
	s.named = len(restored)
	core.Logger().Debug("layers imported", "count", len(restored))
	return nil
}
