package frame

import "fmt"

// TextureKind tells how a TextureID is resolved.
type TextureKind uint8

const (
	// TextureManaged textures live in the painter's atlas table and are
	// created, patched and freed through TexturesDelta.
	TextureManaged TextureKind = iota

	// TextureUser textures are raw rasterizer handles supplied by the
	// caller. They are borrowed and never freed by the painter.
	TextureUser
)

// String returns the kind name.
func (k TextureKind) String() string {
	switch k {
	case TextureManaged:
		return "Managed"
	case TextureUser:
		return "User"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// TextureID references the texture a mesh samples from.
// It is a tagged value: Kind selects how ID is interpreted.
type TextureID struct {
	Kind TextureKind
	ID   uint64
}

// FontTexture is the managed texture the toolkit uses for its font atlas.
var FontTexture = TextureID{Kind: TextureManaged, ID: 0}

// ManagedTexture returns a reference to the atlas table entry id.
func ManagedTexture(id uint64) TextureID {
	return TextureID{Kind: TextureManaged, ID: id}
}

// UserTexture returns a reference to a caller-owned rasterizer handle.
func UserTexture(handle uint64) TextureID {
	return TextureID{Kind: TextureUser, ID: handle}
}

// IsManaged reports whether the texture lives in the atlas table.
func (t TextureID) IsManaged() bool { return t.Kind == TextureManaged }

// String returns a string representation of the reference.
func (t TextureID) String() string {
	return fmt.Sprintf("%s(%d)", t.Kind, t.ID)
}
