package modifier_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/statengine/internal/game/modifier"
	"github.com/cory-johannsen/statengine/internal/game/stat"
)

func stackWith(key string, v stat.Value) *modifier.Stack {
	s := modifier.NewStack()
	s.SetBase(key, v)
	return s
}

func TestStack_Resolve_MissingBaseIsAbsent(t *testing.T) {
	s := modifier.NewStack()
	s.AddModifier("attack", modifier.Modifier{Source: "x", Type: modifier.Override, Value: stat.Int(9), Priority: 1})
	_, ok := s.Resolve("attack")
	assert.False(t, ok, "modifiers must not synthesize a value without a base entry")
}

func TestStack_PoisonIsPersistent(t *testing.T) {
	s := stackWith("health", stat.Int(50))
	s.AddModifier("health", modifier.Modifier{Source: "poison", Type: modifier.Additive, Value: stat.Int(-2), Priority: 10})

	hp, ok := s.Int("health")
	require.True(t, ok)
	assert.Equal(t, int32(48), hp)

	hp, ok = s.Int("health")
	require.True(t, ok)
	assert.Equal(t, int32(48), hp, "modifiers are persistent, not one-shot deltas")
}

func TestStack_MultiplicativeOnZeroThenRebase(t *testing.T) {
	s := stackWith("adoration", stat.Int(0))
	s.AddModifier("adoration", modifier.Modifier{Source: "excitement", Type: modifier.Multiplicative, Value: stat.Float(1.5), Priority: 5})

	v, ok := s.Int("adoration")
	require.True(t, ok)
	assert.Equal(t, int32(0), v)

	s.SetBase("adoration", stat.Int(20))
	v, ok = s.Int("adoration")
	require.True(t, ok)
	assert.Equal(t, int32(30), v)
}

func TestStack_Multiplicative_RoundsHalfAwayFromZero(t *testing.T) {
	s := stackWith("morale", stat.Int(-5))
	s.AddModifier("morale", modifier.Modifier{Source: "fear", Type: modifier.Multiplicative, Value: stat.Float(0.5), Priority: 1})
	v, _ := s.Int("morale")
	assert.Equal(t, int32(-3), v)
}

func TestStack_Additive_IntegerSaturates(t *testing.T) {
	s := stackWith("gold", stat.Int(math.MaxInt32-1))
	s.AddModifier("gold", modifier.Modifier{Source: "hoard", Type: modifier.Additive, Value: stat.Int(10), Priority: 1})
	v, _ := s.Int("gold")
	assert.Equal(t, int32(math.MaxInt32), v)

	s = stackWith("debt", stat.Int(math.MinInt32+1))
	s.AddModifier("debt", modifier.Modifier{Source: "curse", Type: modifier.Additive, Value: stat.Int(-10), Priority: 1})
	v, _ = s.Int("debt")
	assert.Equal(t, int32(math.MinInt32), v)
}

func TestStack_Additive_VariantMismatchSkipped(t *testing.T) {
	s := stackWith("speed", stat.Float(5))
	s.AddModifier("speed", modifier.Modifier{Source: "boots", Type: modifier.Additive, Value: stat.Int(3), Priority: 1})
	s.AddModifier("speed", modifier.Modifier{Source: "haste", Type: modifier.Additive, Value: stat.Float(1.5), Priority: 2})
	v, ok := s.Float("speed")
	require.True(t, ok)
	assert.Equal(t, float32(6.5), v)
}

func TestStack_Multiplicative_IntegerModifierSkipped(t *testing.T) {
	s := stackWith("attack", stat.Int(10))
	s.AddModifier("attack", modifier.Modifier{Source: "odd", Type: modifier.Multiplicative, Value: stat.Int(2), Priority: 1})
	v, _ := s.Int("attack")
	assert.Equal(t, int32(10), v)
}

func TestStack_Multiplicative_NonNumericBaseSkipped(t *testing.T) {
	s := stackWith("title", stat.String("squire"))
	s.AddModifier("title", modifier.Modifier{Source: "x", Type: modifier.Multiplicative, Value: stat.Float(2), Priority: 1})
	v, ok := s.String("title")
	require.True(t, ok)
	assert.Equal(t, "squire", v)
}

func TestStack_Override_ChangesVariantForLaterModifiers(t *testing.T) {
	s := stackWith("attack", stat.Int(10))
	s.AddModifier("attack", modifier.Modifier{Source: "polymorph", Type: modifier.Override, Value: stat.Float(2), Priority: 5})
	s.AddModifier("attack", modifier.Modifier{Source: "a", Type: modifier.Additive, Value: stat.Int(100), Priority: 6})
	s.AddModifier("attack", modifier.Modifier{Source: "b", Type: modifier.Additive, Value: stat.Float(0.5), Priority: 7})

	_, ok := s.Int("attack")
	assert.False(t, ok, "typed accessor must report absence on variant mismatch")
	v, ok := s.Float("attack")
	require.True(t, ok)
	assert.Equal(t, float32(2.5), v)
}

func TestStack_PriorityTiesKeepInsertionOrder(t *testing.T) {
	s := stackWith("x", stat.Int(1))
	s.AddModifier("x", modifier.Modifier{Source: "first", Type: modifier.Override, Value: stat.Int(100), Priority: 3})
	s.AddModifier("x", modifier.Modifier{Source: "second", Type: modifier.Override, Value: stat.Int(200), Priority: 3})
	s.AddModifier("x", modifier.Modifier{Source: "early", Type: modifier.Additive, Value: stat.Int(5), Priority: 1})

	mods := s.Modifiers("x")
	require.Len(t, mods, 3)
	assert.Equal(t, []string{"early", "first", "second"}, []string{mods[0].Source, mods[1].Source, mods[2].Source})
	v, _ := s.Int("x")
	assert.Equal(t, int32(200), v)
}

func TestStack_AddModifierAfterResolve_Visible(t *testing.T) {
	s := stackWith("attack", stat.Int(10))
	v, _ := s.Int("attack")
	require.Equal(t, int32(10), v)
	s.AddModifier("attack", modifier.Modifier{Source: "sword", Type: modifier.Additive, Value: stat.Int(4), Priority: 10})
	v, _ = s.Int("attack")
	assert.Equal(t, int32(14), v)
}

func TestStack_RemoveBase_StopsResolving(t *testing.T) {
	s := stackWith("mana", stat.Int(3))
	_, _ = s.Resolve("mana")
	_, ok := s.RemoveBase("mana")
	require.True(t, ok)
	_, ok = s.Resolve("mana")
	assert.False(t, ok)
}

func TestStack_UpdateBase_InvalidatesCache(t *testing.T) {
	s := stackWith("hp", stat.Int(3))
	_, _ = s.Resolve("hp")
	s.UpdateBase(func(base *stat.Stats) { base.SetInt("hp", 9) })
	v, _ := s.Int("hp")
	assert.Equal(t, int32(9), v)
}

func TestStack_Base_ReturnsCopy(t *testing.T) {
	s := stackWith("hp", stat.Int(3))
	s.Base().SetInt("hp", 99)
	v, _ := s.Int("hp")
	assert.Equal(t, int32(3), v)
}

func TestStack_RemoveBuff_OnlyExactSource(t *testing.T) {
	s := stackWith("attack", stat.Int(10))
	s.SetBase("defense", stat.Int(2))
	s.AddBuff("rage", "attack", stat.Int(5))
	s.AddBuff("rage", "defense", stat.Int(1))
	s.AddBuff("rage2", "attack", stat.Int(7))
	s.AddModifier("attack", modifier.Modifier{Source: "buff:rage:extra", Type: modifier.Additive, Value: stat.Int(1), Priority: 20})

	assert.Equal(t, 2, s.RemoveBuff("rage"))
	v, _ := s.Int("attack")
	assert.Equal(t, int32(18), v)
	d, _ := s.Int("defense")
	assert.Equal(t, int32(2), d)
}

func TestStack_BuffsApplyAfterEquipment(t *testing.T) {
	s := stackWith("attack", stat.Int(10))
	s.AddBuff("focus", "attack", stat.Int(1))
	s.AddModifier("attack", modifier.Modifier{Source: modifier.EquipmentSource("sword"), Type: modifier.Additive, Value: stat.Int(5), Priority: modifier.PriorityEquipment})
	mods := s.Modifiers("attack")
	require.Len(t, mods, 2)
	assert.Equal(t, "equipment:sword", mods[0].Source)
	assert.Equal(t, "buff:focus", mods[1].Source)
}

func TestStack_JSON_PersistsBaseOnly(t *testing.T) {
	s := stackWith("attack", stat.Int(10))
	s.AddBuff("focus", "attack", stat.Int(1))
	data, err := json.Marshal(s)
	require.NoError(t, err)

	out := modifier.NewStack()
	require.NoError(t, json.Unmarshal(data, out))
	assert.Empty(t, out.ModifiedStats())
	v, _ := out.Int("attack")
	assert.Equal(t, int32(10), v)
}

func TestType_TextRoundTrip(t *testing.T) {
	for _, typ := range []modifier.Type{modifier.Additive, modifier.Multiplicative, modifier.Override} {
		b, err := typ.MarshalText()
		require.NoError(t, err)
		var out modifier.Type
		require.NoError(t, out.UnmarshalText(b))
		assert.Equal(t, typ, out)
	}
	_, err := modifier.ParseType("divide")
	assert.Error(t, err)
}

func TestPropertyStack_AdditiveIsSumRegardlessOfOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.Int32Range(-1000, 1000).Draw(t, "base")
		deltas := rapid.SliceOfN(rapid.Int32Range(-1000, 1000), 0, 12).Draw(t, "deltas")
		priorities := rapid.SliceOfN(rapid.IntRange(-5, 5), len(deltas), len(deltas)).Draw(t, "priorities")

		s := stackWith("x", stat.Int(base))
		want := base
		for i, d := range deltas {
			s.AddModifier("x", modifier.Modifier{Source: "src", Type: modifier.Additive, Value: stat.Int(d), Priority: priorities[i]})
			want += d
		}
		got, ok := s.Int("x")
		require.True(t, ok)
		assert.Equal(t, want, got)
	})
}

func TestPropertyStack_OverrideWinsOverLowerPriorities(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.Int32Range(-1000, 1000).Draw(t, "base")
		override := rapid.Int32Range(-1000, 1000).Draw(t, "override")
		after := rapid.Int32Range(-1000, 1000).Draw(t, "after")
		lower := rapid.SliceOfN(rapid.Int32Range(-1000, 1000), 0, 8).Draw(t, "lower")

		s := stackWith("x", stat.Int(base))
		for _, l := range lower {
			s.AddModifier("x", modifier.Modifier{Source: "low", Type: modifier.Additive, Value: stat.Int(l), Priority: rapid.IntRange(-10, 9).Draw(t, "p")})
		}
		s.AddModifier("x", modifier.Modifier{Source: "ovr", Type: modifier.Override, Value: stat.Int(override), Priority: 10})
		got, _ := s.Int("x")
		assert.Equal(t, override, got)

		s.AddModifier("x", modifier.Modifier{Source: "high", Type: modifier.Additive, Value: stat.Int(after), Priority: 11})
		got, _ = s.Int("x")
		assert.Equal(t, override+after, got)
	})
}

func TestPropertyStack_RemoveBySourceLeavesOthers(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sources := []string{"buff:X", "buff:Y", "buff:X2", "equipment:sword"}
		stats := []string{"a", "b", "c"}
		n := rapid.IntRange(0, 20).Draw(t, "n")

		s := modifier.NewStack()
		want := map[string]int{}
		for i := 0; i < n; i++ {
			src := rapid.SampledFrom(sources).Draw(t, "source")
			st := rapid.SampledFrom(stats).Draw(t, "stat")
			s.AddModifier(st, modifier.Modifier{Source: src, Type: modifier.Additive, Value: stat.Int(1), Priority: i})
			if src != "buff:X" {
				want[st]++
			}
		}
		s.RemoveModifiersBySource("buff:X")
		for _, st := range stats {
			mods := s.Modifiers(st)
			assert.Len(t, mods, want[st])
			for _, m := range mods {
				assert.NotEqual(t, "buff:X", m.Source)
			}
		}
	})
}
