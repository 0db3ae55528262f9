package controller

import (
	"context"
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/backendtest"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/gateway"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/render"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/store"
)

const savePath = "/saves/userdata0000"

type harness struct {
	c         *Controller
	authority *backendtest.Authority
	store     *store.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	authority := backendtest.NewAuthority(nil)
	st := store.New()
	g, err := gateway.New(authority, gateway.WithTracker(st))
	require.NoError(t, err)
	c, err := New(g, st)
	require.NoError(t, err)

	_, err = c.Open(context.Background(), savePath)
	require.NoError(t, err)
	return &harness{c: c, authority: authority, store: st}
}

// edits 打开存档之后收到的命令
func (h *harness) edits() []string {
	return h.authority.Commands()[1:]
}

func requireInvalid(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation), "expected validation error, got %v", err)
}

func amountOf(t *testing.T, s *model.Snapshot, ref ArticleRef) uint32 {
	t.Helper()
	a, ok := s.Article(ref.Location, ref.Type, ref.Index)
	require.True(t, ok)
	return a.Amount
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(nil, store.New())
	assert.Error(t, err)

	g, err := gateway.New(backendtest.NewAuthority(nil))
	require.NoError(t, err)
	_, err = New(g, nil)
	assert.Error(t, err)
}

func TestOpenLoadsStore(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.store.Loaded())
	assert.Equal(t, "Hunter", h.store.Current().Username.String)
	assert.Empty(t, h.store.InFlight())

	_, err := h.c.Open(context.Background(), "")
	requireInvalid(t, err)
}

func TestEditsRequireLoadedSave(t *testing.T) {
	authority := backendtest.NewAuthority(nil)
	g, err := gateway.New(authority)
	require.NoError(t, err)
	c, err := New(g, store.New())
	require.NoError(t, err)

	_, err = c.EditQuantity(context.Background(), ArticleRef{Type: model.ArticleConsumable}, 5)
	requireInvalid(t, err)
	_, err = c.SetUsername(context.Background(), "Eileen")
	requireInvalid(t, err)
	assert.Empty(t, authority.Commands())
}

// ===== 数量 =====

func TestStorageMaterialClampedTo600(t *testing.T) {
	h := newHarness(t)
	ref := ArticleRef{Location: model.LocationStorage, Type: model.ArticleMaterial, Index: 0}
	require.Equal(t, uint32(50), amountOf(t, h.store.Current(), ref))

	s, err := h.c.EditQuantity(context.Background(), ref, 700)
	require.NoError(t, err)
	assert.Equal(t, uint32(600), amountOf(t, s, ref))
	assert.Same(t, s, h.store.Current())
}

func TestEditQuantityClampsToCap(t *testing.T) {
	cases := []struct {
		name   string
		ref    ArticleRef
		amount uint32
		want   uint32
	}{
		{"inventory consumable", ArticleRef{model.LocationInventory, model.ArticleConsumable, 0}, 150, 99},
		{"inventory material", ArticleRef{model.LocationInventory, model.ArticleMaterial, 0}, 5, 5},
		{"inventory bullets", ArticleRef{model.LocationInventory, model.ArticleConsumable, 1}, 600, 99},
		{"storage blood vial", ArticleRef{model.LocationStorage, model.ArticleConsumable, 0}, 700, 600},
		{"storage antidote", ArticleRef{model.LocationStorage, model.ArticleConsumable, 1}, 700, 99},
		{"storage material at cap", ArticleRef{model.LocationStorage, model.ArticleMaterial, 0}, 600, 600},
		{"minimum", ArticleRef{model.LocationInventory, model.ArticleConsumable, 0}, 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			s, err := h.c.EditQuantity(context.Background(), tc.ref, tc.amount)
			require.NoError(t, err)
			assert.Equal(t, tc.want, amountOf(t, s, tc.ref))
		})
	}
}

func TestEditQuantityRejects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.c.EditQuantity(ctx, ArticleRef{Type: model.ArticleKey}, 3)
	requireInvalid(t, err)
	_, err = h.c.EditQuantity(ctx, ArticleRef{Type: model.ArticleConsumable}, 0)
	requireInvalid(t, err)
	_, err = h.c.EditQuantity(ctx, ArticleRef{Type: model.ArticleConsumable, Index: 9}, 3)
	requireInvalid(t, err)

	assert.Empty(t, h.edits())
}

func TestQuantityConfigCapFor(t *testing.T) {
	cfg := DefaultQuantityConfig()
	vial := &model.Article{ArticleType: model.ArticleConsumable, Info: model.ItemInfo{ItemName: "Blood Vial"}}
	shard := &model.Article{ArticleType: model.ArticleMaterial}

	assert.Equal(t, uint32(99), cfg.CapFor(vial, model.LocationInventory))
	assert.Equal(t, uint32(600), cfg.CapFor(vial, model.LocationStorage))
	assert.Equal(t, uint32(600), cfg.CapFor(shard, model.LocationStorage))

	custom := &QuantityConfig{DefaultCap: 20, StorageCap: 40}
	assert.Equal(t, uint32(20), custom.CapFor(vial, model.LocationStorage))
	assert.Equal(t, uint32(40), custom.Clamp(shard, model.LocationStorage, 41))
}

// ===== 命令失败 =====

func TestCommandErrorLeavesStoreUnchanged(t *testing.T) {
	h := newHarness(t)
	before := h.store.Current()
	version := h.store.Version()
	h.authority.Fail(gateway.CmdEditQuantity, "write failed")

	s, err := h.c.EditQuantity(context.Background(), ArticleRef{Type: model.ArticleConsumable}, 5)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, gateway.ErrCommand))
	assert.False(t, errors.Is(err, ErrValidation))

	assert.Same(t, before, h.store.Current())
	assert.Equal(t, version, h.store.Version())
	assert.Empty(t, h.store.InFlight())
}

type staleGateway struct {
	Gateway
	seq uint64
}

func (g *staleGateway) Invoke(ctx context.Context, req gateway.Request) (*gateway.Reply, error) {
	return &gateway.Reply{Seq: g.seq, Snapshot: backendtest.Fixture()}, nil
}

func TestStaleReplyReturnsCurrent(t *testing.T) {
	st := store.New()
	newer := backendtest.Fixture()
	newer.Username.String = "Newer"
	st.Apply(10, newer)

	c, err := New(&staleGateway{seq: 3}, st)
	require.NoError(t, err)

	s, err := c.SetUsername(context.Background(), "Older")
	require.NoError(t, err)
	assert.Same(t, newer, s)
}

// ===== 替换与添加 =====

func TestTransform(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cat, err := h.c.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Same(t, cat, h.c.Catalog())

	ref := ArticleRef{Type: model.ArticleRightHand}
	_, err = h.c.Transform(ctx, ref, nil)
	requireInvalid(t, err)

	garb, ok := cat.Lookup(3001)
	require.True(t, ok)
	_, err = h.c.Transform(ctx, ref, &garb)
	requireInvalid(t, err)

	axe, ok := cat.Lookup(2002)
	require.True(t, ok)
	s, err := h.c.Transform(ctx, ref, &axe)
	require.NoError(t, err)

	a, ok := s.Article(model.LocationInventory, model.ArticleRightHand, 0)
	require.True(t, ok)
	assert.Equal(t, uint32(2002), a.ID)
	assert.Equal(t, "Hunter Axe", a.Info.ItemName)
	assert.Equal(t, []string{gateway.CmdTransformItem}, h.edits()[5:])
}

func TestAddItem(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.c.AddItem(ctx, model.LocationInventory, 1100, 0)
	requireInvalid(t, err)

	_, err = h.c.LoadCatalog(ctx)
	require.NoError(t, err)
	_, err = h.c.AddItem(ctx, model.LocationInventory, 9999, 1)
	requireInvalid(t, err)

	s, err := h.c.AddItem(ctx, model.LocationInventory, 1100, 1)
	require.NoError(t, err)
	list := s.Inventory.Articles[model.ArticleConsumable]
	require.Len(t, list, 3)
	assert.Equal(t, "Antidote", list[2].Info.ItemName)
	assert.Equal(t, 2, list[2].Index)
}

// ===== 宝石与槽位 =====

func cleaver() ArticleRef {
	return ArticleRef{Location: model.LocationInventory, Type: model.ArticleRightHand, Index: 0}
}

func gemIDs(s *model.Snapshot) []uint32 {
	var out []uint32
	for _, g := range s.Inventory.Upgrades[model.UpgradeGem] {
		out = append(out, g.ID)
	}
	return out
}

func TestEquipIntoOccupiedSlotUnequipsFirst(t *testing.T) {
	h := newHarness(t)
	before, ok := h.store.Current().Article(model.LocationInventory, model.ArticleRightHand, 0)
	require.True(t, ok)
	require.Equal(t, uint32(11), before.Slots[0].Gem.ID)

	s, err := h.c.EquipGem(context.Background(), cleaver(), 0, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{gateway.CmdUnequipGem, gateway.CmdEquipGem}, h.edits())
	a, ok := s.Article(model.LocationInventory, model.ArticleRightHand, 0)
	require.True(t, ok)
	require.NotNil(t, a.Slots[0].Gem)
	assert.Equal(t, uint32(7), a.Slots[0].Gem.ID)
	assert.Equal(t, []uint32{8, 11}, gemIDs(s))
}

func TestEquipIntoEmptySlot(t *testing.T) {
	h := newHarness(t)
	s, err := h.c.EquipGem(context.Background(), cleaver(), 1, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{gateway.CmdEquipGem}, h.edits())
	a, _ := s.Article(model.LocationInventory, model.ArticleRightHand, 0)
	assert.Equal(t, uint32(8), a.Slots[1].Gem.ID)
	assert.Equal(t, []uint32{7}, gemIDs(s))
}

func TestEquipRejects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.c.EquipGem(ctx, cleaver(), 2, 0)
	requireInvalid(t, err)
	_, err = h.c.EquipGem(ctx, cleaver(), 1, 5)
	requireInvalid(t, err)
	_, err = h.c.EquipGem(ctx, cleaver(), 7, 0)
	requireInvalid(t, err)
	_, err = h.c.EquipGem(ctx, ArticleRef{Type: model.ArticleArmor}, 0, 0)
	requireInvalid(t, err)

	assert.Empty(t, h.edits())
}

func TestUnequipGem(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.c.UnequipGem(ctx, cleaver(), 1)
	requireInvalid(t, err)

	s, err := h.c.UnequipGem(ctx, cleaver(), 0)
	require.NoError(t, err)
	a, _ := s.Article(model.LocationInventory, model.ArticleRightHand, 0)
	assert.Nil(t, a.Slots[0].Gem)
	assert.Equal(t, []uint32{7, 8, 11}, gemIDs(s))
}

func TestEditSlotShapeClearsGem(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.c.EditSlotShape(ctx, cleaver(), 0, model.ShapeDroplet)
	requireInvalid(t, err)

	s, err := h.c.EditSlotShape(ctx, cleaver(), 0, model.ShapeClosed)
	require.NoError(t, err)
	a, _ := s.Article(model.LocationInventory, model.ArticleRightHand, 0)
	assert.Equal(t, model.ShapeClosed, a.Slots[0].Shape)
	assert.Nil(t, a.Slots[0].Gem)
}

// ===== 强化物 =====

func TestEditUpgradeSequence(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.c.LoadCatalog(ctx)
	require.NoError(t, err)

	s, err := h.c.EditUpgrade(ctx, UpgradeEdit{
		Type:    model.UpgradeGem,
		Index:   0,
		Shape:   model.ShapeTriangle,
		Effects: map[int]uint32{1: 201, 0: 101},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{gateway.CmdEditShape, gateway.CmdEditEffect, gateway.CmdEditEffect}, h.edits()[5:])
	calls := h.authority.Calls()
	first := calls[len(calls)-2].Request.(*gateway.EditEffect)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, uint32(7), first.UpgradeID)

	u, ok := s.Upgrade(model.LocationInventory, model.UpgradeGem, 0)
	require.True(t, ok)
	assert.Equal(t, model.ShapeTriangle, u.Shape)
	assert.Equal(t, model.Effect{ID: 101, Label: "Physical ATK UP +15%"}, u.Effects[0])
	assert.Equal(t, model.Effect{ID: 201, Label: "HP -3.2%"}, u.Effects[1])
	assert.Equal(t, "Cursed Tempering Blood Gemstone", UpgradeName(u))
}

func TestEditUpgradeSkipsUnchanged(t *testing.T) {
	h := newHarness(t)
	s, err := h.c.EditUpgrade(context.Background(), UpgradeEdit{
		Type:    model.UpgradeGem,
		Index:   0,
		Shape:   model.ShapeRadial,
		Effects: map[int]uint32{0: 100},
	})
	require.NoError(t, err)
	assert.Same(t, h.store.Current(), s)
	assert.Empty(t, h.edits())
}

func TestEditUpgradeRejects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cases := []UpgradeEdit{
		{Type: model.UpgradeGem, Index: 5},
		{Type: model.UpgradeGem, Index: 0, Shape: model.ShapeOath},
		{Type: model.UpgradeRune, Index: 0, Shape: model.ShapeRadial},
		{Type: model.UpgradeGem, Index: 0, Effects: map[int]uint32{6: 100}},
		{Type: model.UpgradeGem, Index: 0, Effects: map[int]uint32{2: model.NoEffect}},
	}
	for _, edit := range cases {
		_, err := h.c.EditUpgrade(ctx, edit)
		requireInvalid(t, err)
	}

	_, err := h.c.LoadCatalog(ctx)
	require.NoError(t, err)
	_, err = h.c.EditUpgrade(ctx, UpgradeEdit{Type: model.UpgradeRune, Index: 0, Effects: map[int]uint32{0: 100}})
	requireInvalid(t, err)

	assert.Len(t, h.edits(), 5)
}

func TestRuneShapeEdit(t *testing.T) {
	h := newHarness(t)
	s, err := h.c.EditUpgrade(context.Background(), UpgradeEdit{
		Type:  model.UpgradeRune,
		Index: 0,
		Shape: model.ShapeOath,
	})
	require.NoError(t, err)
	u, _ := s.Upgrade(model.LocationInventory, model.UpgradeRune, 0)
	assert.Equal(t, model.ShapeOath, u.Shape)
	assert.Equal(t, "Great Lake", UpgradeName(u))
}

// ===== 首领与标记 =====

func TestToggleBossRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	s, err := h.c.ToggleBoss(ctx, "Cleric Beast", true)
	require.NoError(t, err)
	boss := s.Bosses[0]
	assert.True(t, boss.Dead())
	for _, f := range boss.Flags {
		assert.Equal(t, f.DeadValue, f.CurrentValue)
	}

	s, err = h.c.ToggleBoss(ctx, "Cleric Beast", false)
	require.NoError(t, err)
	original := backendtest.Fixture().Bosses[0]
	for i, f := range s.Bosses[0].Flags {
		assert.Equal(t, original.Flags[i].AliveValue, f.CurrentValue)
	}
	assert.False(t, s.Bosses[0].Dead())
	assert.Len(t, h.edits(), 4)

	_, err = h.c.ToggleBoss(ctx, "Vicar Amelia", true)
	requireInvalid(t, err)
}

func TestApplyFlagPreset(t *testing.T) {
	h := newHarness(t)
	_, err := h.c.ApplyFlagPreset(context.Background(), "Restore Maria's dialogue")
	require.NoError(t, err)

	calls := h.authority.Calls()[1:]
	require.Len(t, calls, 2)
	assert.Equal(t, &gateway.SetFlag{Offset: 1083, NewValue: 0}, calls[0].Request)
	assert.Equal(t, &gateway.SetFlag{Offset: 1084, NewValue: 8}, calls[1].Request)
	assert.Less(t, calls[0].Seq, calls[1].Seq)

	_, err = h.c.ApplyFlagPreset(context.Background(), "Unlock everything")
	requireInvalid(t, err)
	_, err = h.c.SetFlag(context.Background(), -1, 1)
	requireInvalid(t, err)
}

// ===== 角色 =====

func TestEditStatsSequential(t *testing.T) {
	h := newHarness(t)
	s, err := h.c.EditStats(context.Background(), map[string]uint32{
		"Echoes":   2_000_000_000,
		"Vitality": 11,
		"Level":    20,
	})
	require.NoError(t, err)

	calls := h.authority.Calls()[1:]
	require.Len(t, calls, 2)
	assert.Equal(t, &gateway.EditStat{RelOffset: 0, Length: 4, Times: 1, Value: 20}, calls[0].Request)
	assert.Equal(t, &gateway.EditStat{RelOffset: 12, Length: 4, Times: 1, Value: model.MaxStatValue}, calls[1].Request)

	level, _ := s.StatByName("Level")
	echoes, _ := s.StatByName("Echoes")
	assert.Equal(t, uint32(20), level.Value)
	assert.Equal(t, model.MaxStatValue, echoes.Value)
	assert.Same(t, h.store.Current(), s)
}

func TestEditStatsStopsOnFailure(t *testing.T) {
	h := newHarness(t)
	h.authority.Fail(gateway.CmdEditStat, "locked")

	_, err := h.c.EditStats(context.Background(), map[string]uint32{"Level": 20, "Echoes": 1})
	require.Error(t, err)
	assert.Len(t, h.edits(), 1)

	_, err = h.c.EditStats(context.Background(), map[string]uint32{"Luck": 20})
	requireInvalid(t, err)
}

func TestSetUsername(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.c.SetUsername(ctx, "")
	requireInvalid(t, err)
	_, err = h.c.SetUsername(ctx, "abcdefghijklmnopq")
	requireInvalid(t, err)

	s, err := h.c.SetUsername(ctx, "Lady Maria")
	require.NoError(t, err)
	assert.Equal(t, "Lady Maria", s.Username.String)
}

func TestSetPlaytime(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	s, err := h.c.SetPlaytime(ctx, model.Playtime{Hours: 2, Minutes: 30})
	require.NoError(t, err)
	assert.Equal(t, uint32(9_000_000), s.Playtime)
	assert.Equal(t, model.Playtime{Hours: 2, Minutes: 30}, model.InterpretPlaytime(s.Playtime))

	_, err = h.c.SetPlaytime(ctx, model.Playtime{Minutes: 60})
	requireInvalid(t, err)
}

func TestTeleportAndCoordinates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	s, err := h.c.Teleport(ctx, "1st Floor Sickroom")
	require.NoError(t, err)
	assert.Equal(t, model.MapID{24, 1}, s.Position.LoadedMap)
	assert.Equal(t, model.Value("-199.74"), s.Position.Coordinates.X)

	_, err = h.c.Teleport(ctx, "Nowhere")
	requireInvalid(t, err)

	s, err = h.c.EditCoordinates(ctx, 1, 2.5, -3)
	require.NoError(t, err)
	assert.Equal(t, model.Value("2.5"), s.Position.Coordinates.Y)
	assert.Equal(t, model.MapID{24, 1}, s.Position.LoadedMap)

	_, err = h.c.EditCoordinates(ctx, math.NaN(), 0, 0)
	requireInvalid(t, err)
}

// ===== 查询类命令 =====

func TestSaveRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.c.SetUsername(ctx, "Gehrman")
	require.NoError(t, err)

	message, err := h.c.Save(ctx, "/saves/out")
	require.NoError(t, err)
	assert.Equal(t, "Saved to /saves/out", message)

	saved, ok := h.authority.Saved("/saves/out")
	require.True(t, ok)
	assert.Equal(t, "Gehrman", saved.Username.String)

	_, err = h.c.Save(ctx, "")
	requireInvalid(t, err)
}

func TestIsz(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	isz, err := h.c.IszStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, backendtest.GlitchedIsz, isz)

	message, isz, err := h.c.FixIsz(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Isz glitch fixed", message)
	assert.Equal(t, backendtest.FixedIsz, isz)
}

func TestAppearance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	message, err := h.c.ExportAppearance(ctx, "/tmp/look.bin")
	require.NoError(t, err)
	assert.Equal(t, "Appearance exported to /tmp/look.bin", message)

	message, err = h.c.ImportAppearance(ctx, "/tmp/look.bin")
	require.NoError(t, err)
	assert.Equal(t, "Appearance imported from /tmp/look.bin", message)

	_, err = h.c.ImportAppearance(ctx, "")
	requireInvalid(t, err)
}

// ===== 与渲染联动 =====

func TestBoardRepaintsEditedRecordOnly(t *testing.T) {
	h := newHarness(t)
	var repainted []string
	board := render.NewBoard(model.LocationInventory, render.NewImageSet(), render.WithOnRender(func(key string, _ []render.DrawOp) {
		repainted = append(repainted, key)
	}))
	board.Sync(h.store.Current())
	cancel := board.Bind(h.store)
	defer cancel()

	repainted = nil
	_, err := h.c.EditQuantity(context.Background(), ArticleRef{Type: model.ArticleConsumable, Index: 1}, 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"Consumable/1"}, repainted)
}

func TestSetQuantityAppliesNewCaps(t *testing.T) {
	h := newHarness(t)
	h.c.SetQuantity(&QuantityConfig{DefaultCap: 30, StorageCap: 60})
	h.c.SetQuantity(nil)

	ref := ArticleRef{Location: model.LocationStorage, Type: model.ArticleMaterial}
	s, err := h.c.EditQuantity(context.Background(), ref, 700)
	require.NoError(t, err)
	assert.Equal(t, uint32(60), amountOf(t, s, ref))
}
