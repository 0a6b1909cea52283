package assets

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

type typeKind uint8

const (
	kindImage typeKind = iota + 1
	kindSound
	kindVideo
	kindCustom
)

// Type categorizes assets. Custom types carry a numeric id.
type Type struct {
	kind typeKind
	id   uint32
}

// Built-in asset types.
var (
	Image = Type{kind: kindImage}
	Sound = Type{kind: kindSound}
	Video = Type{kind: kindVideo}
)

// Custom returns the custom asset type with the given id.
func Custom(id uint32) Type { return Type{kind: kindCustom, id: id} }

// IsCustom reports whether t is a custom type and returns its id.
func (t Type) IsCustom() (uint32, bool) { return t.id, t.kind == kindCustom }

func (t Type) String() string {
	switch t.kind {
	case kindImage:
		return "image"
	case kindSound:
		return "sound"
	case kindVideo:
		return "video"
	case kindCustom:
		return "custom:" + strconv.FormatUint(uint64(t.id), 10)
	default:
		return "invalid"
	}
}

// ParseType parses the String form of a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "image":
		return Image, nil
	case "sound":
		return Sound, nil
	case "video":
		return Video, nil
	}
	if rest, ok := strings.CutPrefix(s, "custom:"); ok {
		id, err := strconv.ParseUint(rest, 10, 32)
		if err != nil {
			return Type{}, newError(KindFormat, s, err)
		}
		return Custom(uint32(id)), nil
	}
	return Type{}, newError(KindInvalidAssetType, s, nil)
}

// Asset is a named binary blob loaded from disk.
type Asset struct {
	Type     Type
	Path     string
	Name     string
	Data     []byte
	Metadata map[string]string
}

// New returns an asset with no metadata.
func New(t Type, path, name string, data []byte) *Asset {
	return &Asset{Type: t, Path: path, Name: name, Data: data, Metadata: make(map[string]string)}
}

// WithMetadata sets one metadata entry and returns a.
func (a *Asset) WithMetadata(key, value string) *Asset {
	a.Metadata[key] = value
	return a
}

// Clone returns a deep copy of a.
func (a *Asset) Clone() *Asset {
	out := *a
	out.Data = slices.Clone(a.Data)
	out.Metadata = maps.Clone(a.Metadata)
	if out.Metadata == nil {
		out.Metadata = make(map[string]string)
	}
	return &out
}

// Copy returns a deep copy of a renamed to name.
func (a *Asset) Copy(name string) *Asset {
	out := a.Clone()
	out.Name = name
	return out
}

// Checksum returns the xxhash of the asset data.
func (a *Asset) Checksum() uint64 { return xxhash.Sum64(a.Data) }

// Save writes the data to path, or to a.Path when path is empty, creating
// parent directories as needed.
func (a *Asset) Save(path string) error {
	if path == "" {
		path = a.Path
	}
	if path == "" {
		return newError(KindOther, a.Name, fmt.Errorf("no save path"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return newError(KindIO, a.Name, err)
	}
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return newError(KindIO, a.Name, err)
	}
	return nil
}
