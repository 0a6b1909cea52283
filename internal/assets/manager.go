// Package assets loads and caches binary game assets by name.
package assets

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DefaultRoot is the asset root used when none is configured.
const DefaultRoot = "assets"

// Manager caches assets by name and resolves relative paths against a base
// directory per asset type.
//
// Manager is safe for concurrent use. Returned assets are copies; use
// Transform to mutate a cached asset.
type Manager struct {
	mu        sync.RWMutex
	assets    map[string]*Asset
	basePaths map[Type]string
	logger    *zap.Logger
}

// NewManager returns a Manager whose image, sound, and video base paths are
// the images, sounds, and videos subdirectories of root.
//
// Precondition: logger must not be nil.
func NewManager(root string, logger *zap.Logger) *Manager {
	if root == "" {
		root = DefaultRoot
	}
	return &Manager{
		assets: make(map[string]*Asset),
		basePaths: map[Type]string{
			Image: filepath.Join(root, "images"),
			Sound: filepath.Join(root, "sounds"),
			Video: filepath.Join(root, "videos"),
		},
		logger: logger,
	}
}

// SetBasePath sets the directory that relative paths of type t resolve under.
func (m *Manager) SetBasePath(t Type, dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.basePaths[t] = dir
}

// Path joins rel to the base path of t, or returns rel unchanged when t has
// no base path.
func (m *Manager) Path(t Type, rel string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path(t, rel)
}

func (m *Manager) path(t Type, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	if base, ok := m.basePaths[t]; ok {
		return filepath.Join(base, rel)
	}
	return rel
}

// Load reads the asset at rel under the base path of t and caches it under
// name, or under the file name when name is empty.
//
// Postcondition: when an asset with the resolved name is already cached it is
// returned without touching the filesystem.
func (m *Manager) Load(t Type, rel, name string) (*Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(t, m.path(t, rel), name)
}

func (m *Manager) load(t Type, full, name string) (*Asset, error) {
	if name == "" {
		name = filepath.Base(full)
		if name == "." || name == string(filepath.Separator) {
			name = "unnamed_asset"
		}
	}
	if a, ok := m.assets[name]; ok {
		return a.Clone(), nil
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, newError(KindIO, name, err)
	}
	a := New(t, full, name, data)
	m.assets[name] = a
	m.logger.Debug("asset loaded",
		zap.String("name", name),
		zap.Stringer("type", t),
		zap.Int("bytes", len(data)),
	)
	return a.Clone(), nil
}

// LoadDirectory loads every regular file directly under rel (resolved against
// the base path of t), naming each asset after its file.
//
// Postcondition: returns the loaded names in directory order; on error the
// assets loaded before the failure stay cached.
func (m *Manager) LoadDirectory(t Type, rel string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir := m.path(t, rel)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, newError(KindIO, dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if _, err := m.load(t, filepath.Join(dir, e.Name()), e.Name()); err != nil {
			return names, err
		}
		names = append(names, e.Name())
	}
	m.logger.Info("asset directory loaded", zap.String("dir", dir), zap.Int("count", len(names)))
	return names, nil
}

// Add caches a directly, replacing any asset with the same name.
func (m *Manager) Add(a *Asset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[a.Name] = a.Clone()
}

// Get returns a copy of the cached asset called name.
func (m *Manager) Get(name string) (*Asset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assets[name]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

// Remove evicts the asset called name and returns it.
func (m *Manager) Remove(name string) (*Asset, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[name]
	if ok {
		delete(m.assets, name)
	}
	return a, ok
}

// Duplicate caches a copy of original under newName.
func (m *Manager) Duplicate(original, newName string) (*Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duplicate(original, newName)
}

func (m *Manager) duplicate(original, newName string) (*Asset, error) {
	a, ok := m.assets[original]
	if !ok {
		return nil, newError(KindAssetNotFound, original, nil)
	}
	cp := a.Copy(newName)
	m.assets[newName] = cp
	return cp.Clone(), nil
}

// Transform applies fn to the cached asset called name in place.
func (m *Manager) Transform(name string, fn func(*Asset)) (*Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transform(name, fn)
}

func (m *Manager) transform(name string, fn func(*Asset)) (*Asset, error) {
	a, ok := m.assets[name]
	if !ok {
		return nil, newError(KindAssetNotFound, name, nil)
	}
	fn(a)
	if a.Name != name {
		delete(m.assets, name)
		m.assets[a.Name] = a
	}
	return a.Clone(), nil
}

// TransformCopy duplicates original as newName and transforms the copy.
func (m *Manager) TransformCopy(original, newName string, fn func(*Asset)) (*Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.duplicate(original, newName); err != nil {
		return nil, err
	}
	return m.transform(newName, fn)
}

// Save writes the cached asset called name to path, or to its own path when
// path is empty.
func (m *Manager) Save(name, path string) error {
	a, ok := m.Get(name)
	if !ok {
		return newError(KindAssetNotFound, name, nil)
	}
	return a.Save(path)
}

// Names returns the cached asset names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.assets))
	for n := range m.assets {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// DuplicateData groups cached assets whose data is byte-identical, matched
// by Checksum and confirmed byte for byte.
//
// Postcondition: each group holds two or more names in sorted order; groups
// are ordered by their first name.
func (m *Manager) DuplicateData() [][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.assets))
	for n := range m.assets {
		names = append(names, n)
	}
	slices.Sort(names)

	byHash := make(map[uint64][][]string)
	for _, n := range names {
		a := m.assets[n]
		sum := a.Checksum()
		groups := byHash[sum]
		placed := false
		for i, g := range groups {
			if bytes.Equal(m.assets[g[0]].Data, a.Data) {
				groups[i] = append(g, n)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []string{n})
		}
		byHash[sum] = groups
	}

	var dups [][]string
	for _, groups := range byHash {
		for _, g := range groups {
			if len(g) > 1 {
				dups = append(dups, g)
			}
		}
	}
	slices.SortFunc(dups, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	return dups
}

// Len returns the number of cached assets.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.assets)
}

// Clear evicts every cached asset.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.assets)
}
