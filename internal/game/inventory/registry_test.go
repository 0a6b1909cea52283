package inventory_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cory-johannsen/statengine/internal/game/inventory"
	"github.com/cory-johannsen/statengine/internal/game/stat"
)

func swordDef() *inventory.ItemDef {
	return &inventory.ItemDef{ID: "sword", Name: "Sword", Kind: inventory.KindWeapon, Damage: 5}
}

// TestRegistry_Register_Lookup verifies that a registered ItemDef can be
// retrieved by ID.
func TestRegistry_Register_Lookup(t *testing.T) {
	r := inventory.NewRegistry()
	def := swordDef()
	if err := r.Register(def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := r.Item(def.ID)
	if !ok {
		t.Fatal("expected item to be found")
	}
	if got.ID != def.ID {
		t.Fatalf("expected ID=%q, got %q", def.ID, got.ID)
	}
}

// TestRegistry_Register_CollisionError verifies that registering two ItemDefs
// with the same ID returns an error on the second registration.
func TestRegistry_Register_CollisionError(t *testing.T) {
	r := inventory.NewRegistry()
	if err := r.Register(swordDef()); err != nil {
		t.Fatalf("unexpected error on first register: %v", err)
	}
	if err := r.Register(swordDef()); err == nil {
		t.Fatal("expected collision error on second register, got nil")
	}
}

// TestRegistry_All_SortedByID verifies that All returns every template in
// ascending ID order.
func TestRegistry_All_SortedByID(t *testing.T) {
	r := inventory.NewRegistry()
	for _, id := range []string{"w3", "w1", "w2"} {
		if err := r.Register(&inventory.ItemDef{ID: id, Name: id, Kind: inventory.KindMisc}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	all := r.All()
	if len(all) != 3 || r.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", len(all))
	}
	for i, want := range []string{"w1", "w2", "w3"} {
		if all[i].ID != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, all[i].ID)
		}
	}
}

func TestItemDef_Validate(t *testing.T) {
	cases := []struct {
		name string
		def  inventory.ItemDef
		want string
	}{
		{"missing id", inventory.ItemDef{Name: "x", Kind: inventory.KindMisc}, "ID must not be empty"},
		{"bad kind", inventory.ItemDef{ID: "x", Name: "x", Kind: "relic"}, "Kind must be one of"},
		{"weapon without damage", inventory.ItemDef{ID: "x", Name: "x", Kind: inventory.KindWeapon}, "Damage must be > 0"},
		{"armor without defense", inventory.ItemDef{ID: "x", Name: "x", Kind: inventory.KindArmor}, "Defense must be > 0"},
		{"potion without healing", inventory.ItemDef{ID: "x", Name: "x", Kind: inventory.KindPotion}, "Healing must be > 0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.def.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
	if err := swordDef().Validate(); err != nil {
		t.Fatalf("expected valid sword, got %v", err)
	}
}

// TestItemDef_New verifies the instance carries kind, combat values, and
// extra properties.
func TestItemDef_New(t *testing.T) {
	def := swordDef()
	def.Properties = map[string]stat.Value{"rarity": stat.String("rare")}
	it := def.New("sword-7")
	if it.ID() != "sword-7" || it.Name() != "Sword" {
		t.Fatalf("unexpected identity %q/%q", it.ID(), it.Name())
	}
	if kind, _ := it.String(inventory.KeyType); kind != inventory.KindWeapon {
		t.Fatalf("expected type %q, got %q", inventory.KindWeapon, kind)
	}
	if tmpl, _ := it.String(inventory.KeyTemplate); tmpl != "sword" {
		t.Fatalf("expected template %q, got %q", "sword", tmpl)
	}
	if dmg, _ := it.Int(inventory.KeyDamage); dmg != 5 {
		t.Fatalf("expected damage 5, got %d", dmg)
	}
	if it.Has(inventory.KeyDefense) {
		t.Fatal("zero defense must not be set")
	}
	if r, _ := it.String("rarity"); r != "rare" {
		t.Fatalf("expected rarity rare, got %q", r)
	}
	if it.Equipped() {
		t.Fatal("new items start unequipped")
	}
}

func TestLoadItems(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"sword.yaml": "id: sword\nname: Sword\nkind: weapon\ndamage: 4\n",
		"potion.yml": "id: potion\nname: Potion\nkind: potion\nhealing: 10\nproperties:\n  rarity: {string: common}\n",
		"readme.txt": "ignored",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	r, err := inventory.LoadItems(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", r.Len())
	}
	p, ok := r.Item("potion")
	if !ok || p.Properties["rarity"] != stat.String("common") {
		t.Fatalf("potion not loaded with properties: %+v", p)
	}
}

func TestLoadItems_InvalidItem(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: bad\nname: Bad\nkind: weapon\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := inventory.LoadItems(dir); err == nil {
		t.Fatal("expected validation error")
	}
}
