// Package content loads the YAML game content and binary assets a game is
// seeded from.
package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/statengine/internal/assets"
	"github.com/cory-johannsen/statengine/internal/config"
	"github.com/cory-johannsen/statengine/internal/game/entity"
	"github.com/cory-johannsen/statengine/internal/game/inventory"
	"github.com/cory-johannsen/statengine/internal/game/npc"
	"github.com/cory-johannsen/statengine/internal/game/property"
	"github.com/cory-johannsen/statengine/internal/game/state"
	"github.com/cory-johannsen/statengine/internal/game/tag"
)

// Bundle is the loaded content of one content tree.
type Bundle struct {
	Tags        *tag.Collection
	EntityTypes *entity.Registry
	// Items is nil when no items directory is configured.
	Items     *inventory.Registry
	Templates []*npc.Template
	Assets    *assets.Manager
}

// Load reads every configured content directory. Empty directory settings
// are skipped and leave the corresponding registry empty.
//
// Precondition: logger must not be nil.
// Postcondition: Returns a Bundle whose NPC templates all reference loaded
// entity types, or the first loading error.
func Load(cfg config.ContentConfig, logger *zap.Logger) (*Bundle, error) {
	b := &Bundle{
		Tags:        tag.NewCollection(),
		EntityTypes: entity.NewRegistry(),
		Assets:      assets.NewManager(cfg.AssetsDir, logger),
	}

	if cfg.TagsDir != "" {
		if _, err := tag.LoadDirectory(cfg.TagsDir, b.Tags); err != nil {
			return nil, fmt.Errorf("loading tags: %w", err)
		}
	}
	if cfg.EntitiesDir != "" {
		reg, err := entity.LoadDirectory(cfg.EntitiesDir, b.Tags)
		if err != nil {
			return nil, fmt.Errorf("loading entity types: %w", err)
		}
		b.EntityTypes = reg
	}
	if cfg.ItemsDir != "" {
		items, err := inventory.LoadItems(cfg.ItemsDir)
		if err != nil {
			return nil, fmt.Errorf("loading items: %w", err)
		}
		b.Items = items
	}
	if cfg.NPCsDir != "" {
		templates, err := npc.LoadTemplates(cfg.NPCsDir)
		if err != nil {
			return nil, fmt.Errorf("loading npc templates: %w", err)
		}
		for _, t := range templates {
			if _, ok := b.EntityTypes.Get(t.EntityType); !ok {
				return nil, fmt.Errorf("npc template %q: unknown entity type %q", t.ID, t.EntityType)
			}
		}
		b.Templates = templates
	}
	if cfg.AssetsDir != "" {
		if err := b.loadAssets(); err != nil {
			return nil, fmt.Errorf("loading assets: %w", err)
		}
	}

	itemCount := 0
	if b.Items != nil {
		itemCount = b.Items.Len()
	}
	logger.Info("content loaded",
		zap.Int("tags", b.Tags.Len()),
		zap.Int("entity_types", b.EntityTypes.Len()),
		zap.Int("items", itemCount),
		zap.Int("npc_templates", len(b.Templates)),
		zap.Int("assets", b.Assets.Len()),
	)
	return b, nil
}

func (b *Bundle) loadAssets() error {
	for _, t := range []assets.Type{assets.Image, assets.Sound, assets.Video} {
		dir := b.Assets.Path(t, "")
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if _, err := b.Assets.LoadDirectory(t, ""); err != nil {
			return err
		}
	}
	return nil
}

// Seed installs the bundle's tags and entity types into a new game.
//
// Precondition: g was created by state.New, not decoded from a snapshot,
// whose own registries take precedence.
func (b *Bundle) Seed(g *state.GameState) {
	g.Tags = b.Tags
	g.EntityTypes = b.EntityTypes
}

// MissingAssets returns "<owner>: <asset>" for every asset-valued property on
// a tag or entity type whose asset name is not loaded, sorted.
func (b *Bundle) MissingAssets() []string {
	var missing []string
	check := func(owner string, props []property.Property) {
		for _, p := range props {
			name, ok := p.Value.AsAsset()
			if !ok {
				continue
			}
			if _, found := b.Assets.Get(filepath.Base(name)); !found {
				missing = append(missing, owner+": "+name)
			}
		}
	}
	for _, t := range b.Tags.All() {
		check("tag "+t.Name, t.Properties)
	}
	for _, et := range b.EntityTypes.All() {
		check("entity "+et.ID, et.Properties)
	}
	slices.Sort(missing)
	return missing
}
