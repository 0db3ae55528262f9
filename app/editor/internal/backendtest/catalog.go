package backendtest

import (
	"strconv"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/gateway"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
)

var noEffectKey = strconv.FormatUint(uint64(model.NoEffect), 10)

func entry(name, img string) gateway.CatalogItem {
	return gateway.CatalogItem{ItemName: name, ItemImg: img, ItemDesc: name + " description"}
}

func weaponEntry(name, img, physical string) gateway.CatalogItem {
	e := entry(name, img)
	e.Damage = &model.Damage{Physical: model.Value(physical), Blood: "-", Arcane: "-", Fire: "-", Bolt: "-"}
	return e
}

// Weapons return_weapons 样本
func Weapons() gateway.WeaponTable {
	return gateway.WeaponTable{
		"rightHand": {
			"2000": weaponEntry("Saw Cleaver", "saw_cleaver.png", "90"),
			"2001": weaponEntry("Threaded Cane", "threaded_cane.png", "80"),
			"2002": weaponEntry("Hunter Axe", "hunter_axe.png", "100"),
		},
		"leftHand": {
			"2100": weaponEntry("Hunter Pistol", "hunter_pistol.png", "70"),
			"2101": weaponEntry("Hunter Blunderbuss", "hunter_blunderbuss.png", "60"),
		},
	}
}

// Items return_items 样本
func Items() gateway.ItemTable {
	chalice := entry("Pthumeru Chalice", "pthumeru_chalice.png")
	chalice.Depth, chalice.Area = "1", "Pthumeru"
	ailing := entry("Ailing Loran Chalice", "ailing_loran_chalice.png")
	ailing.Depth, ailing.Area = "5", "Loran"

	return gateway.ItemTable{
		"consumable": {
			"1000": entry("Blood Vial", "blood_vial.png"),
			"1001": entry("Quicksilver Bullets", "quicksilver_bullets.png"),
			"1100": entry("Antidote", "antidote.png"),
		},
		"material": {
			"1200": entry("Coldblood Dew", "coldblood_dew.png"),
			"1500": entry("Blood Stone Shard", "blood_stone_shard.png"),
		},
		"key": {
			"1300": entry("Hunter Chief Emblem", "hunter_chief_emblem.png"),
		},
		"chalice": {
			"4000": chalice,
			"4001": ailing,
		},
	}
}

// Armors return_armors 样本
func Armors() gateway.ArmorTable {
	return gateway.ArmorTable{
		"3000": {
			ItemName:         "Hunter Garb",
			ItemImg:          "hunter_garb.png",
			ItemDesc:         "Hunter Garb description",
			PhysicalDefense:  &model.PhysicalDefense{Physical: "35", Blunt: "33", Thrust: "38", Blood: "32"},
			ElementalDefense: &model.ElementalDefense{Arcane: "26", Fire: "30", Bolt: "24"},
			Beasthood:        "25",
			Type:             "Chest",
		},
		"3001": {
			ItemName:         "Yharnam Hunter Garb",
			ItemImg:          "yharnam_hunter_garb.png",
			ItemDesc:         "Yharnam Hunter Garb description",
			PhysicalDefense:  &model.PhysicalDefense{Physical: "38", Blunt: "36", Thrust: "40", Blood: "34"},
			ElementalDefense: &model.ElementalDefense{Arcane: "28", Fire: "31", Bolt: "25"},
			Beasthood:        "30",
			Type:             "Chest",
		},
	}
}

// GemEffects return_gem_effects 样本，包含哨兵 id
func GemEffects() gateway.EffectTable {
	return gateway.EffectTable{
		"100":       {Effect: "Physical ATK UP +10%", Rating: 5, Level: 3, Name: "Tempering Blood Gemstone"},
		"101":       {Effect: "Physical ATK UP +15%", Rating: 8, Level: 6, Name: "Tempering Blood Gemstone"},
		"200":       {Effect: "Blood ATK UP +20%", Rating: 12, Level: 18, Name: "Damp Blood Gem"},
		"201":       {Effect: "HP -3.2%", Rating: 0, Level: 0, Name: "Damp Blood Gem"},
		"300":       {Effect: "Fire ATK UP +5%", Rating: 3, Level: 2, Name: "Fire Blood Gemstone"},
		noEffectKey: {Effect: "No Effect"},
	}
}

// RuneEffects return_rune_effects 样本，包含哨兵 id
func RuneEffects() gateway.EffectTable {
	return gateway.EffectTable{
		"400":       {Effect: "Reduce physical damage", Rating: 2, Name: "Great Lake", Note: "Lake rune"},
		"401":       {Effect: "Reduce physical damage more", Rating: 3, Name: "Great Lake", Note: "Lake rune"},
		"500":       {Effect: "HP recovery", Rating: 1, Name: "Milkweed", Note: "Oath"},
		noEffectKey: {Effect: "No Effect"},
	}
}
