package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/xdooria-editor/pkg/serializer"
)

const snapshotJSON = `{
  "stats": [
    {"name": "Level", "rel_offset": 0, "length": 4, "times": 1, "value": 10},
    {"name": "Echoes", "rel_offset": 4, "length": 4, "times": 1, "value": 500},
    {"name": "Insight", "rel_offset": 8, "length": 4, "times": 2, "value": 3}
  ],
  "inventory": {
    "articles": {
      "Consumable": [
        {"number": 1, "id": 1000, "first_part": 1, "second_part": 2, "amount": 20,
         "info": {"item_name": "Blood Vial", "item_desc": "Heal", "item_img": "blood_vial.png"},
         "article_type": "Consumable"}
      ],
      "RightHand": [
        {"number": 2, "id": 2000, "first_part": 3, "second_part": 4, "amount": 1,
         "info": {"item_name": "Saw Cleaver", "item_desc": "", "item_img": "saw_cleaver.png",
                  "extra_info": {"damage": {"physical": 90, "blood": "-", "arcane": "-", "fire": "-", "bolt": "-"},
                                 "upgrade_level": 3, "imprint": "Uncanny"}},
         "article_type": "RightHand",
         "slots": [{"shape": "Radial", "gem": null}, {"shape": "Closed", "gem": null}]}
      ]
    },
    "upgrades": {
      "Gem": [
        {"id": 7, "source": 1, "upgrade_type": "Gem", "shape": "Droplet",
         "effects": [[3143408, "Physical ATK UP +10%"], [4294967295, "No Effect"]],
         "info": {"name": "Tempering Blood Gemstone", "effect": "Physical ATK UP +10%", "rating": 5, "level": 3, "note": ""}}
      ]
    }
  },
  "storage": {"articles": {}, "upgrades": {}},
  "username": {"string": "Hunter"},
  "bosses": [
    {"name": "Father Gascoigne", "flags": [
      {"rel_offset": 10, "dead_value": 128, "alive_value": 0, "current_value": 128},
      {"rel_offset": 11, "dead_value": 4, "alive_value": 0, "current_value": 4}
    ]}
  ],
  "playtime": 3723004,
  "position": {"coordinates": {"offset": 64, "x": "1.5", "y": "-2", "z": "3.25"}, "loaded_map": 277}
}`

func decodeFixture(t *testing.T) *Snapshot {
	t.Helper()
	s, err := DecodeSnapshot([]byte(snapshotJSON))
	require.NoError(t, err)
	return s
}

func TestDecodeSnapshot(t *testing.T) {
	s := decodeFixture(t)

	vial, ok := s.Article(LocationInventory, ArticleConsumable, 0)
	require.True(t, ok)
	assert.Equal(t, "Blood Vial", vial.Name())
	assert.Equal(t, FamilyItem, vial.TypeFamily)

	cleaver, ok := s.Article(LocationInventory, ArticleRightHand, 0)
	require.True(t, ok)
	lvl, imprint := cleaver.Weapon()
	assert.Equal(t, 3, lvl)
	assert.Equal(t, ImprintUncanny, imprint)
	assert.Equal(t, Value("90"), cleaver.Info.ExtraInfo.Damage.Physical)
	assert.Equal(t, Value("-"), cleaver.Info.ExtraInfo.Damage.Blood)
	require.Len(t, cleaver.Slots, 2)
	assert.False(t, cleaver.Slots[0].Occupied())

	gem, ok := s.Upgrade(LocationInventory, UpgradeGem, 0)
	require.True(t, ok)
	require.Len(t, gem.Effects, 2)
	assert.Equal(t, uint32(3143408), gem.Effects[0].ID)
	assert.True(t, gem.Effects[1].Empty())

	require.NotNil(t, s.Position)
	assert.Equal(t, MapID{21, 1}, s.Position.LoadedMap)
	x, ok := s.Position.Coordinates.X.Float()
	require.True(t, ok)
	assert.InDelta(t, 1.5, x, 1e-9)

	_, ok = s.Article(LocationStorage, ArticleMaterial, 0)
	assert.False(t, ok)
}

func TestNormalizeSetsIndex(t *testing.T) {
	s := &Snapshot{
		Inventory: Inventory{
			Articles: map[ArticleType][]Article{
				ArticleMaterial: {{ID: 1, Index: 9}, {ID: 2, Index: 9}},
			},
			Upgrades: map[UpgradeType][]Upgrade{
				UpgradeRune: {{ID: 3}, {ID: 4}},
			},
		},
	}
	s.Normalize()
	assert.Equal(t, 0, s.Inventory.Articles[ArticleMaterial][0].Index)
	assert.Equal(t, 1, s.Inventory.Articles[ArticleMaterial][1].Index)
	assert.Equal(t, 1, s.Inventory.Upgrades[UpgradeRune][1].Index)
}

func TestCloneIsDeep(t *testing.T) {
	s := decodeFixture(t)
	c := s.Clone()

	c.Inventory.Articles[ArticleConsumable][0].Amount = 99
	c.Bosses[0].Flags[0].CurrentValue = 0
	c.Username.String = "Other"

	assert.Equal(t, uint32(20), s.Inventory.Articles[ArticleConsumable][0].Amount)
	assert.Equal(t, uint8(128), s.Bosses[0].Flags[0].CurrentValue)
	assert.Equal(t, "Hunter", s.Username.String)
	assert.Equal(t, s.Position.LoadedMap, c.Position.LoadedMap)
}

func TestEffectJSON(t *testing.T) {
	var e Effect
	require.NoError(t, json.Unmarshal([]byte(`[12, "Blood ATK UP"]`), &e))
	assert.Equal(t, Effect{ID: 12, Label: "Blood ATK UP"}, e)

	require.NoError(t, json.Unmarshal([]byte(`4294967295`), &e))
	assert.True(t, e.Empty())

	require.Error(t, json.Unmarshal([]byte(`[]`), &e))

	data, err := json.Marshal(Effect{ID: 5, Label: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `[5, "x"]`, string(data))
}

func TestMapIDJSON(t *testing.T) {
	var m MapID
	require.NoError(t, json.Unmarshal([]byte(`[24, 2]`), &m))
	assert.Equal(t, MapID{24, 2}, m)

	require.NoError(t, json.Unmarshal([]byte(`2072`), &m))
	assert.Equal(t, MapID{24, 8}, m)

	require.Error(t, json.Unmarshal([]byte(`[1, 2, 3]`), &m))

	data, err := json.Marshal(MapID{24, 1})
	require.NoError(t, err)
	assert.JSONEq(t, `[24, 1]`, string(data))
	var back MapID
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, MapID{24, 1}, back)
}

func TestCloneKeepsPosition(t *testing.T) {
	s := &Snapshot{Position: &Position{
		Coordinates: Coordinates{X: "1.5", Y: "-2", Z: "3"},
		LoadedMap:   MapID{21, 3},
	}}
	c := s.Clone()
	require.NotNil(t, c.Position)
	assert.Equal(t, MapID{21, 3}, c.Position.LoadedMap)
	c.Position.LoadedMap[0] = 1
	assert.Equal(t, uint8(21), s.Position.LoadedMap[0])
}

func TestRecordVariants(t *testing.T) {
	s := decodeFixture(t)
	cleaver, _ := s.Article(LocationInventory, ArticleRightHand, 0)
	gem, _ := s.Upgrade(LocationInventory, UpgradeGem, 0)

	records := []Record{cleaver, gem}
	var kinds []string
	for _, r := range records {
		switch v := r.(type) {
		case *Article:
			kinds = append(kinds, "article:"+string(v.ArticleType))
		case *Upgrade:
			kinds = append(kinds, "upgrade:"+string(v.UpgradeType))
		}
	}
	assert.Equal(t, []string{"article:RightHand", "upgrade:Gem"}, kinds)
	assert.Equal(t, CategoryRightHand, cleaver.Category())
	assert.Equal(t, CategoryGem, gem.Category())
	assert.Equal(t, "RightHand/0", cleaver.Key())
	assert.Equal(t, "Gem/0", gem.Key())
}

func TestCategory(t *testing.T) {
	assert.Len(t, Categories, 9)
	c, ok := ParseCategory("righthand")
	require.True(t, ok)
	assert.Equal(t, CategoryRightHand, c)

	at, ok := CategoryChalice.ArticleType()
	require.True(t, ok)
	assert.Equal(t, ArticleChalice, at)

	_, ok = CategoryGem.ArticleType()
	assert.False(t, ok)
	ut, ok := CategoryRune.UpgradeType()
	require.True(t, ok)
	assert.Equal(t, UpgradeRune, ut)

	assert.Equal(t, FamilyWeapon, ArticleLeftHand.Family())
	assert.Equal(t, FamilyItem, ArticleKey.Family())
	assert.True(t, ArticleMaterial.Stackable())
	assert.False(t, ArticleChalice.Stackable())
}

func TestBossDead(t *testing.T) {
	s := decodeFixture(t)
	assert.True(t, s.Bosses[0].Dead())

	s.Bosses[0].Flags[1].CurrentValue = 0
	assert.False(t, s.Bosses[0].Dead())

	assert.False(t, (&Boss{}).Dead())
}

func TestLegacyBossFlag(t *testing.T) {
	f := LegacyBossFlag{DeadValue: 0x04, Value: 0x81}
	assert.False(t, f.Dead())

	f.Value = f.Toggle(true)
	assert.Equal(t, uint8(0x85), f.Value)
	assert.True(t, f.Dead())

	f.Value = f.Toggle(false)
	assert.Equal(t, uint8(0x81), f.Value)
	assert.False(t, f.Dead())
}

func TestPlaytime(t *testing.T) {
	p := InterpretPlaytime(3723004)
	assert.Equal(t, Playtime{Hours: 1, Minutes: 2, Seconds: 3, Milliseconds: 4}, p)

	ms, err := p.ToMilliseconds()
	require.NoError(t, err)
	assert.Equal(t, uint32(3723004), ms)

	assert.Equal(t, [4]byte{0xFC, 0xCE, 0x38, 0x00}, EncodePlaytime(3723004))
	assert.Equal(t, "FCCE3800", RepresentPlaytime(3723004))

	_, err = Playtime{Minutes: 61}.ToMilliseconds()
	assert.Error(t, err)
	_, err = Playtime{Hours: 2000}.ToMilliseconds()
	assert.Error(t, err)
}

func TestStatsViews(t *testing.T) {
	s := decodeFixture(t)
	attrs := s.AttributeStats()
	require.Len(t, attrs, 1)
	assert.Equal(t, "Level", attrs[0].Name)
	assert.Len(t, s.CurrencyStats(), 2)

	st, ok := s.StatByName("Insight")
	require.True(t, ok)
	assert.Equal(t, 2, st.Times)

	assert.Equal(t, MaxStatValue, ClampStat(2_000_000_000))
	assert.Equal(t, uint32(5), ClampStat(5))
}

func TestLookupTables(t *testing.T) {
	assert.Len(t, Destinations, 43)
	d, ok := FindDestination("Cathedral Ward")
	require.True(t, ok)
	assert.Equal(t, MapID{24, 0}, d.MapID)

	p, ok := FindFlagPreset("Enable Doll's lullaby")
	require.True(t, ok)
	assert.Equal(t, 6689, p.Offset)
	assert.Equal(t, []uint8{1, 8}, p.Values)

	assert.Equal(t, GemShapes, ShapesFor(UpgradeGem))
	assert.True(t, ValidShape(ShapeOath, ShapesFor(UpgradeRune)))
	assert.False(t, ValidShape(ShapeDroplet, SlotShapes))
}

func TestMsgpackLooseForms(t *testing.T) {
	data, err := serializer.Encode(map[string]any{
		"physical": 90, "blood": "-", "arcane": nil, "fire": 1.5, "bolt": -3,
	})
	require.NoError(t, err)
	var d Damage
	require.NoError(t, serializer.Decode(data, &d))
	assert.Equal(t, Value("90"), d.Physical)
	assert.Equal(t, Value("-"), d.Blood)
	assert.Equal(t, Value(""), d.Arcane)
	assert.Equal(t, Value("1.5"), d.Fire)
	assert.Equal(t, Value("-3"), d.Bolt)

	data, err = serializer.Encode([]any{[]any{400, "Reduce physical damage"}, []any{NoEffect, nil}, 7})
	require.NoError(t, err)
	var effects []Effect
	require.NoError(t, serializer.Decode(data, &effects))
	assert.Equal(t, []Effect{{ID: 400, Label: "Reduce physical damage"}, {ID: NoEffect}, {ID: 7}}, effects)

	for _, raw := range []any{[]any{24, 8}, uint32(2072)} {
		data, err = serializer.Encode(raw)
		require.NoError(t, err)
		var m MapID
		require.NoError(t, serializer.Decode(data, &m))
		assert.Equal(t, MapID{24, 8}, m)
	}

	data, err = serializer.Encode([]any{1, 2, 3})
	require.NoError(t, err)
	var bad MapID
	assert.Error(t, serializer.Decode(data, &bad))
}

func TestMsgpackSnapshotRoundTrip(t *testing.T) {
	s, err := DecodeSnapshot([]byte(snapshotJSON))
	require.NoError(t, err)
	s.Position = &Position{Coordinates: Coordinates{X: "1.5", Y: "-2", Z: "3"}, LoadedMap: MapID{21, 3}}

	data, err := serializer.Encode(s)
	require.NoError(t, err)
	var back Snapshot
	require.NoError(t, serializer.Decode(data, &back))
	back.Normalize()

	assert.Equal(t, s.Position, back.Position)
	assert.Equal(t, s.Stats, back.Stats)
	assert.Equal(t, s.Bosses, back.Bosses)
	cleaver, ok := back.Article(LocationInventory, ArticleRightHand, 0)
	require.True(t, ok)
	assert.Equal(t, Value("90"), cleaver.Info.ExtraInfo.Damage.Physical)
	assert.Len(t, cleaver.Slots, 2)
	gem, ok := back.Upgrade(LocationInventory, UpgradeGem, 0)
	require.True(t, ok)
	want, _ := s.Upgrade(LocationInventory, UpgradeGem, 0)
	assert.Equal(t, want.Effects, gem.Effects)
}
