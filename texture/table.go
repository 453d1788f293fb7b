package texture

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gogpu/uiglue/frame"
	"github.com/gogpu/uiglue/raster"
)

// ErrUnknownTexture is returned when a managed texture ID is not in the table.
var ErrUnknownTexture = errors.New("texture: unknown managed texture")

// Table holds the managed textures of one painter, keyed by the
// toolkit's texture ID. The table owns its textures and releases them on
// Free and Close.
type Table struct {
	dev     raster.Device
	logger  *slog.Logger
	entries map[uint64]*RGBA8
}

// NewTable returns an empty table uploading to dev. A nil logger is allowed.
func NewTable(dev raster.Device, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Table{
		dev:     dev,
		logger:  logger,
		entries: make(map[uint64]*RGBA8),
	}
}

// Set creates or updates texture id. A partial delta for an unknown
// texture is logged and ignored.
func (t *Table) Set(id uint64, d frame.ImageDelta) {
	if tex, ok := t.entries[id]; ok {
		tex.Update(d)
		t.logger.Debug("texture: updated", slog.Uint64("id", id), slog.String("delta", d.String()))
		return
	}
	tex, ok := FromDelta(d)
	if !ok {
		t.logger.Warn("texture: partial delta for unknown texture ignored",
			slog.Uint64("id", id), slog.String("delta", d.String()))
		return
	}
	t.entries[id] = tex
	t.logger.Debug("texture: created", slog.Uint64("id", id), slog.String("delta", d.String()))
}

// Free releases texture id and removes it from the table.
func (t *Table) Free(id uint64) {
	tex, ok := t.entries[id]
	if !ok {
		return
	}
	tex.Release()
	delete(t.entries, id)
	t.logger.Debug("texture: freed", slog.Uint64("id", id))
}

// Get returns texture id.
func (t *Table) Get(id uint64) (*RGBA8, bool) {
	tex, ok := t.entries[id]
	return tex, ok
}

// Len returns the number of textures.
func (t *Table) Len() int {
	return len(t.entries)
}

// IDs returns the texture IDs in ascending order.
func (t *Table) IDs() []uint64 {
	ids := make([]uint64, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Apply applies the Set part of d in order. Entries naming user
// textures are ignored.
func (t *Table) Apply(d frame.TexturesDelta) {
	for _, s := range d.Set {
		if !s.ID.IsManaged() {
			t.logger.Warn("texture: delta for user texture ignored", slog.String("id", s.ID.String()))
			continue
		}
		t.Set(s.ID.ID, s.Delta)
	}
}

// ApplyFrees applies the Free part of d.
func (t *Table) ApplyFrees(d frame.TexturesDelta) {
	for _, id := range d.Free {
		if id.IsManaged() {
			t.Free(id.ID)
		}
	}
}

// Activate binds texture id to a sampler slot, uploading it if needed.
func (t *Table) Activate(id uint64, slot int) error {
	tex, ok := t.entries[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}
	return tex.Activate(t.dev, slot)
}

// Close releases every texture and empties the table.
func (t *Table) Close() {
	for id, tex := range t.entries {
		tex.Release()
		delete(t.entries, id)
	}
}
