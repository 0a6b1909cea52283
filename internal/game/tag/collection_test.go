package tag_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/statengine/internal/game/property"
	"github.com/cory-johannsen/statengine/internal/game/stat"
	"github.com/cory-johannsen/statengine/internal/game/tag"
)

func TestCollection_AddTag_SequentialFromOne(t *testing.T) {
	c := tag.NewCollection()
	assert.Equal(t, 1, c.AddTag("fire"))
	assert.Equal(t, 2, c.AddTag("ice"))
	assert.Equal(t, 2, c.Len())
}

func TestCollection_AddTag_DuplicateNameConsumesNoID(t *testing.T) {
	c := tag.NewCollection()
	require.Equal(t, 1, c.AddTag("fire"))
	assert.Equal(t, 0, c.AddTag("fire"))
	assert.Equal(t, 2, c.AddTag("ice"))
}

func TestCollection_RemoveTag_IDNotReused(t *testing.T) {
	c := tag.NewCollection()
	c.AddTag("fire")
	id := c.AddTag("ice")
	require.True(t, c.RemoveTag(id))
	assert.False(t, c.RemoveTag(id))

	_, ok := c.Tag(id)
	assert.False(t, ok)
	_, ok = c.TagByName("ice")
	assert.False(t, ok)
	assert.Equal(t, 3, c.AddTag("ice"), "removed ids are never reallocated")
}

func TestCollection_AddTagWithID(t *testing.T) {
	c := tag.NewCollection()
	require.True(t, c.AddTagWithID(5, "wind"))
	assert.False(t, c.AddTagWithID(5, "gust"), "id taken")
	assert.False(t, c.AddTagWithID(6, "wind"), "name taken")
	assert.False(t, c.AddTagWithID(0, "zero"))
	assert.False(t, c.AddTagWithID(-1, "neg"))
	assert.Equal(t, 6, c.AddTag("earth"), "allocation continues above explicit ids")
}

func TestCollection_AddTag_AllocatesAboveExplicitIDs(t *testing.T) {
	c := tag.NewCollection()
	require.True(t, c.AddTagWithID(1, "reserved"))
	require.True(t, c.AddTagWithID(3, "also-reserved"))
	c2 := tag.NewCollection()
	require.True(t, c2.AddTagWithID(2, "b"))
	assert.Equal(t, 4, c.AddTag("next"))
	assert.Equal(t, 3, c2.AddTag("c"))
}

func TestCollection_TagMutableThroughPointer(t *testing.T) {
	c := tag.NewCollection()
	id := c.AddTag("burning")
	tg, ok := c.Tag(id)
	require.True(t, ok)
	tg.WithProperty(property.StatModifier("health", stat.Int(-2)).WithContext("combat"))

	again, _ := c.TagByName("burning")
	assert.Len(t, again.Properties, 1)
}

func TestCollection_QueriesOrderedByID(t *testing.T) {
	c := tag.NewCollection()
	for _, name := range []string{"a", "b", "c"} {
		c.AddTag(name)
	}
	a, _ := c.TagByName("a")
	a.WithProperty(property.Ability("slash").WithContext("combat"))
	cc, _ := c.TagByName("c")
	cc.WithProperty(property.New(property.TypeVisual, property.AssetValue("glow.png")).WithContext("render"))

	abilities := c.TagsWithPropertyType(property.TypeAbility)
	require.Len(t, abilities, 1)
	assert.Equal(t, "a", abilities[0].Name)

	combat := c.TagsInContext("combat")
	require.Len(t, combat, 1, "ability carries default and is visible everywhere; the visual is render-only")
	assert.Equal(t, "a", combat[0].Name)

	all := c.All()
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].ID, all[1].ID, all[2].ID})
}

func TestTag_PropertiesInContext(t *testing.T) {
	tg := tag.New(1, "hero").WithProperties(
		property.New(property.TypeBehavior, property.FunctionValue("brave")).WithContext("combat"),
		property.New(property.TypeBehavior, property.FunctionValue("wander")).WithContext("movement"),
	)
	got := tg.PropertiesInContext("movement")
	require.Len(t, got, 1)
	id, _ := got[0].Value.AsFunction()
	assert.Equal(t, "wander", id)
	assert.Len(t, tg.PropertiesByType(property.TypeBehavior), 2)
}

func TestTag_Clone_SharesNothing(t *testing.T) {
	orig := tag.New(1, "undead").
		WithMetadata("origin", "crypt").
		WithProperty(property.StatModifier("defense", stat.Int(2)).
			WithContext("combat").
			WithMetadata("note", "bones").
			WithCondition(property.StatThreshold("health", stat.Int(10), true)))
	cp := orig.Clone()
	require.True(t, cp.Equal(orig))

	cp.Metadata["origin"] = "swamp"
	cp.Properties[0].Context[0] = "social"
	cp.Properties[0].Metadata["note"] = "slime"
	cp.Properties[0].Conditions[0].Parameters["threshold"] = stat.Int(99)
	cp.Properties = append(cp.Properties, property.Ability("bite"))

	assert.Equal(t, "crypt", orig.Metadata["origin"])
	assert.Equal(t, property.DefaultContext, orig.Properties[0].Context[0])
	assert.Equal(t, "bones", orig.Properties[0].Metadata["note"])
	assert.Equal(t, stat.Int(10), orig.Properties[0].Conditions[0].Parameters["threshold"])
	assert.Len(t, orig.Properties, 1)
}

func TestCollection_JSONRoundTrip(t *testing.T) {
	c := tag.NewCollection()
	c.AddTag("fire")
	ice := c.AddTag("ice")
	c.AddTag("wind")
	require.True(t, c.RemoveTag(ice))
	fire, _ := c.TagByName("fire")
	fire.WithProperty(property.StatModifier("attack", stat.Int(3))).WithMetadata("color", "red")

	data, err := json.Marshal(c)
	require.NoError(t, err)

	out := tag.NewCollection()
	require.NoError(t, json.Unmarshal(data, out))
	assert.Equal(t, c.NextID(), out.NextID())
	require.Equal(t, c.Len(), out.Len())
	for _, want := range c.All() {
		got, ok := out.Tag(want.ID)
		require.True(t, ok)
		assert.True(t, want.Equal(got), "tag %d differs", want.ID)
	}
	assert.Equal(t, 4, out.AddTag("earth"))
}

func TestCollection_UnmarshalJSON_RejectsDuplicateNames(t *testing.T) {
	data := `{"tags":[{"id":1,"name":"x","properties":[],"metadata":{}},{"id":2,"name":"x","properties":[],"metadata":{}}],"next_id":3}`
	assert.Error(t, json.Unmarshal([]byte(data), tag.NewCollection()))
}

func TestLoadDirectory_RegistersTags(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("01_fire.yaml", `
name: fire
properties:
  - type: stat_modifier
    value: {kind: stat, key: attack, stat: {integer: 2}}
    context: [combat]
metadata:
  element: fire
`)
	write("02_undead.yaml", `
id: 10
name: undead
properties:
  - type: custom:immunity
    value: {kind: custom, key: poison, value: "true"}
    context: [default]
`)
	write("notes.txt", "ignored")

	c := tag.NewCollection()
	n, err := tag.LoadDirectory(dir, c)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	fire, ok := c.TagByName("fire")
	require.True(t, ok)
	assert.Equal(t, 1, fire.ID)
	assert.Equal(t, "fire", fire.Metadata["element"])
	require.Len(t, fire.Properties, 1)
	assert.Empty(t, fire.PropertiesInContext("movement"))

	undead, ok := c.Tag(10)
	require.True(t, ok)
	assert.Equal(t, "undead", undead.Name)
	assert.Equal(t, 11, c.NextID())
}

func TestLoadDirectory_UnknownFieldFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: x\ncolour: red\n"), 0o644))
	_, err := tag.LoadDirectory(dir, tag.NewCollection())
	assert.Error(t, err)
}

func TestLoadDirectory_DuplicateNameFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("name: x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("name: x\n"), 0o644))
	_, err := tag.LoadDirectory(dir, tag.NewCollection())
	assert.ErrorContains(t, err, "b.yaml")
}

func TestPropertyCollection_IndexStaysBijective(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := tag.NewCollection()
		names := map[string]int{}
		ops := rapid.SliceOfN(rapid.IntRange(0, 2), 1, 50).Draw(rt, "ops")
		for i, op := range ops {
			name := rapid.SampledFrom([]string{"a", "b", "c", "d", "e"}).Draw(rt, "name")
			switch op {
			case 0:
				prev := c.NextID()
				id := c.AddTag(name)
				if _, dup := names[name]; dup {
					assert.Zero(rt, id)
					assert.Equal(rt, prev, c.NextID(), "op %d: failed add must not consume an id", i)
				} else {
					assert.Positive(rt, id)
					names[name] = id
				}
			case 1:
				if id, ok := names[name]; ok {
					assert.True(rt, c.RemoveTag(id))
					delete(names, name)
				}
			case 2:
				id, ok := c.ID(name)
				want, exists := names[name]
				assert.Equal(rt, exists, ok)
				assert.Equal(rt, want, id)
			}
		}
		assert.Equal(rt, len(names), c.Len())
		for name, id := range names {
			tg, ok := c.Tag(id)
			require.True(rt, ok)
			assert.Equal(rt, name, tg.Name)
		}
	})
}
