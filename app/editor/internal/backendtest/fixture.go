// Package backendtest 提供测试用的快照样本与内存权威端。
package backendtest

import "github.com/lk2023060901/xdooria-editor/app/editor/internal/model"

func noEffects(n int) []model.Effect {
	out := make([]model.Effect, n)
	for i := range out {
		out[i] = model.Effect{ID: model.NoEffect, Label: "No Effect"}
	}
	return out
}

func gemEffects(labels ...model.Effect) []model.Effect {
	return append(labels, noEffects(model.GemEffectSlots-len(labels))...)
}

func article(t model.ArticleType, id, amount uint32, name, img string) model.Article {
	return model.Article{
		ID:          id,
		Amount:      amount,
		ArticleType: t,
		TypeFamily:  t.Family(),
		Info:        model.ItemInfo{ItemName: name, ItemDesc: name + " description", ItemImg: img},
	}
}

// Fixture 一份覆盖全部分类的快照
func Fixture() *model.Snapshot {
	tempering := model.Upgrade{
		ID:          7,
		Source:      1,
		UpgradeType: model.UpgradeGem,
		Shape:       model.ShapeRadial,
		Effects:     gemEffects(model.Effect{ID: 100, Label: "Physical ATK UP +10%"}),
		Info:        model.UpgradeInfo{Name: "Tempering Blood Gemstone", Effect: "Physical ATK UP +10%", Rating: 5, Level: 3},
	}
	cursed := model.Upgrade{
		ID:          8,
		Source:      2,
		UpgradeType: model.UpgradeGem,
		Shape:       model.ShapeDroplet,
		Effects: gemEffects(
			model.Effect{ID: 200, Label: "Blood ATK UP +20%"},
			model.Effect{ID: 201, Label: "HP -3.2%"},
		),
		Info: model.UpgradeInfo{Name: "Cursed Damp Blood Gem", Effect: "Blood ATK UP +20%", Rating: 12, Level: 18},
	}
	equipped := model.Upgrade{
		ID:          11,
		Source:      1,
		UpgradeType: model.UpgradeGem,
		Shape:       model.ShapeRadial,
		Effects:     gemEffects(model.Effect{ID: 300, Label: "Fire ATK UP +5%"}),
		Info:        model.UpgradeInfo{Name: "Fire Blood Gemstone", Effect: "Fire ATK UP +5%", Rating: 3, Level: 2},
	}

	cleaver := article(model.ArticleRightHand, 2000, 1, "Saw Cleaver", "saw_cleaver.png")
	cleaver.Info.ExtraInfo = &model.ExtraInfo{
		Damage:       &model.Damage{Physical: "90", Blood: "-", Arcane: "-", Fire: "-", Bolt: "-"},
		UpgradeLevel: 3,
		Imprint:      model.ImprintUncanny,
	}
	cleaver.Slots = []model.Slot{
		{Shape: model.ShapeRadial, Gem: &equipped},
		{Shape: model.ShapeTriangle},
		{Shape: model.ShapeClosed},
	}

	pistol := article(model.ArticleLeftHand, 2100, 1, "Hunter Pistol", "hunter_pistol.png")
	pistol.Info.ExtraInfo = &model.ExtraInfo{
		Damage: &model.Damage{Physical: "70", Blood: "-", Arcane: "-", Fire: "-", Bolt: "-"},
	}
	pistol.Slots = []model.Slot{{Shape: model.ShapeClosed}, {Shape: model.ShapeClosed}, {Shape: model.ShapeClosed}}

	garb := article(model.ArticleArmor, 3000, 1, "Hunter Garb", "hunter_garb.png")
	garb.Info.ExtraInfo = &model.ExtraInfo{
		PhysicalDefense:  &model.PhysicalDefense{Physical: "35", Blunt: "33", Thrust: "38", Blood: "32"},
		ElementalDefense: &model.ElementalDefense{Arcane: "26", Fire: "30", Bolt: "24"},
		Beasthood:        "25",
	}

	chalice := article(model.ArticleChalice, 4000, 1, "Pthumeru Chalice", "pthumeru_chalice.png")
	chalice.Info.ExtraInfo = &model.ExtraInfo{Depth: "1", Area: "Pthumeru"}

	s := &model.Snapshot{
		Stats: []model.Stat{
			{Name: "Level", RelOffset: 0, Length: 4, Times: 1, Value: 10},
			{Name: "Vitality", RelOffset: 4, Length: 4, Times: 2, Value: 11},
			{Name: "Echoes", RelOffset: 12, Length: 4, Times: 1, Value: 500},
			{Name: "Insight", RelOffset: 16, Length: 4, Times: 2, Value: 3},
		},
		Inventory: model.Inventory{
			Articles: map[model.ArticleType][]model.Article{
				model.ArticleConsumable: {
					article(model.ArticleConsumable, 1000, 20, "Blood Vial", "blood_vial.png"),
					article(model.ArticleConsumable, 1001, 5, "Quicksilver Bullets", "quicksilver_bullets.png"),
				},
				model.ArticleMaterial: {
					article(model.ArticleMaterial, 1200, 3, "Coldblood Dew", "coldblood_dew.png"),
				},
				model.ArticleKey: {
					article(model.ArticleKey, 1300, 1, "Hunter Chief Emblem", "hunter_chief_emblem.png"),
				},
				model.ArticleRightHand: {cleaver},
				model.ArticleLeftHand:  {pistol},
				model.ArticleArmor:     {garb},
				model.ArticleChalice:   {chalice},
			},
			Upgrades: map[model.UpgradeType][]model.Upgrade{
				model.UpgradeGem: {tempering, cursed},
				model.UpgradeRune: {
					{
						ID:          9,
						UpgradeType: model.UpgradeRune,
						Shape:       model.ShapeRuneBase,
						Effects:     []model.Effect{{ID: 400, Label: "Reduce physical damage"}},
						Info:        model.UpgradeInfo{Name: "Great Lake", Effect: "Reduce physical damage", Rating: 2, Note: "Lake rune"},
					},
					{
						ID:          10,
						UpgradeType: model.UpgradeRune,
						Shape:       model.ShapeOath,
						Effects:     []model.Effect{{ID: 500, Label: "HP recovery"}},
						Info:        model.UpgradeInfo{Name: "Milkweed", Effect: "HP recovery", Rating: 1, Note: "Oath"},
					},
				},
			},
		},
		Storage: model.Inventory{
			Articles: map[model.ArticleType][]model.Article{
				model.ArticleConsumable: {
					article(model.ArticleConsumable, 1000, 300, "Blood Vial", "blood_vial.png"),
					article(model.ArticleConsumable, 1100, 10, "Antidote", "antidote.png"),
				},
				model.ArticleMaterial: {
					article(model.ArticleMaterial, 1500, 50, "Blood Stone Shard", "blood_stone_shard.png"),
				},
			},
			Upgrades: map[model.UpgradeType][]model.Upgrade{},
		},
		Username: model.Username{String: "Hunter"},
		Bosses: []model.Boss{
			{Name: "Cleric Beast", Flags: []model.BossFlag{
				{RelOffset: 100, DeadValue: 0x80, AliveValue: 0x00, CurrentValue: 0x00},
				{RelOffset: 101, DeadValue: 0x04, AliveValue: 0x00, CurrentValue: 0x00},
			}},
			{Name: "Father Gascoigne", Flags: []model.BossFlag{
				{RelOffset: 200, DeadValue: 0x02, AliveValue: 0x00, CurrentValue: 0x02},
			}},
		},
		Playtime: 3723004,
		Position: &model.Position{
			Coordinates: model.Coordinates{Offset: 64, X: "1.5", Y: "-2", Z: "3.25"},
			LoadedMap:   model.MapID{21, 0},
		},
	}
	s.Normalize()
	return s
}
