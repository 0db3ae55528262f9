package backendtest

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/gateway"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
)

// 拒绝码
const (
	CodeNotFound  = "not_found"
	CodeInvalid   = "invalid"
	CodeNoSave    = "no_save"
	CodeInjected  = "injected"
	CodeMismatch  = "mismatch"
	CodeSlotState = "slot_state"
)

// FixedIsz fix_isz 之后 get_isz 返回的值
var FixedIsz = gateway.Isz{0x00, 0x00, 0x00, 0x00}

// GlitchedIsz 样本存档的 isz 字节
var GlitchedIsz = gateway.Isz{0xFF, 0xFF, 0x1A, 0x03}

// Call 权威端收到的一条命令
type Call struct {
	Seq     uint64
	Command string
	Request gateway.Request
}

// Authority 内存权威端
// 对快照副本执行命令并返回完整快照，行为与真实后端的请求/回复约定一致
type Authority struct {
	mu       sync.Mutex
	initial  *model.Snapshot
	current  *model.Snapshot
	isz      gateway.Isz
	saved    map[string]*model.Snapshot
	failures map[string]*gateway.RemoteError
	calls    []Call

	weapons     gateway.WeaponTable
	items       gateway.ItemTable
	armors      gateway.ArmorTable
	gemEffects  gateway.EffectTable
	runeEffects gateway.EffectTable
}

// NewAuthority 以 s 作为 make_save 打开的存档；s 为 nil 时使用 Fixture
func NewAuthority(s *model.Snapshot) *Authority {
	if s == nil {
		s = Fixture()
	}
	return &Authority{
		initial:     s.Clone(),
		saved:       make(map[string]*model.Snapshot),
		failures:    make(map[string]*gateway.RemoteError),
		weapons:     Weapons(),
		items:       Items(),
		armors:      Armors(),
		gemEffects:  GemEffects(),
		runeEffects: RuneEffects(),
	}
}

// Open 直接加载存档，等同于一次成功的 make_save
func (a *Authority) Open() *model.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.load()
	return a.current.Clone()
}

func (a *Authority) load() {
	a.current = a.initial.Clone()
	a.current.Normalize()
	a.isz = append(gateway.Isz(nil), GlitchedIsz...)
}

// Fail 让后续的 command 调用返回拒绝，message 为空时取消
func (a *Authority) Fail(command, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if message == "" {
		delete(a.failures, command)
		return
	}
	a.failures[command] = &gateway.RemoteError{Code: CodeInjected, Message: message}
}

// Snapshot 当前快照副本
func (a *Authority) Snapshot() *model.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current.Clone()
}

// Saved save 命令写到 path 的快照
func (a *Authority) Saved(path string) (*model.Snapshot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.saved[path]
	return s, ok
}

// Calls 已收到的命令
func (a *Authority) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Call(nil), a.calls...)
}

// Commands 已收到的命令名
func (a *Authority) Commands() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.calls))
	for i, c := range a.calls {
		out[i] = c.Command
	}
	return out
}

// Call 实现 gateway.Transport，参数与结果都经过一次 JSON 编解码
func (a *Authority) Call(ctx context.Context, seq uint64, command string, params any, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	req, ok := gateway.NewRequest(command)
	if !ok {
		return errors.Wrapf(gateway.ErrUnknownCommand, "%q", command)
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return errors.Wrapf(err, "backendtest: encode %s", command)
		}
		if err := json.Unmarshal(data, req); err != nil {
			return errors.Wrapf(err, "backendtest: decode %s", command)
		}
	}

	result, err := a.Handle(seq, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return errors.Wrapf(err, "backendtest: encode %s result", command)
	}
	return json.Unmarshal(data, out)
}

func reject(code, format string, args ...any) error {
	return &gateway.RemoteError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Handle 执行一条命令，失败时返回 *gateway.RemoteError
func (a *Authority) Handle(seq uint64, req gateway.Request) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	command := req.Command()
	a.calls = append(a.calls, Call{Seq: seq, Command: command, Request: req})
	if re, ok := a.failures[command]; ok {
		return nil, re
	}

	switch r := req.(type) {
	case *gateway.MakeSave:
		if r.Path == "" {
			return nil, reject(CodeInvalid, "empty save path")
		}
		a.load()
		return a.current.Clone(), nil
	case *gateway.ReturnWeapons:
		return a.weapons, nil
	case *gateway.ReturnItems:
		return a.items, nil
	case *gateway.ReturnArmors:
		return a.armors, nil
	case *gateway.ReturnGemEffects:
		return a.gemEffects, nil
	case *gateway.ReturnRuneEffects:
		return a.runeEffects, nil
	}

	if a.current == nil {
		return nil, reject(CodeNoSave, "no save loaded")
	}

	var err error
	switch r := req.(type) {
	case *gateway.EditQuantity:
		err = a.editQuantity(r)
	case *gateway.TransformItem:
		err = a.transformItem(r)
	case *gateway.EditStat:
		err = a.editStat(r)
	case *gateway.SetUsername:
		if utf8.RuneCountInString(r.NewUsername) > model.MaxUsernameLength {
			return nil, reject(CodeInvalid, "username longer than %d", model.MaxUsernameLength)
		}
		a.current.Username.String = r.NewUsername
	case *gateway.SetPlaytime:
		a.current.Playtime = binary.LittleEndian.Uint32(r.NewPlaytime[:])
	case *gateway.EditCoordinates:
		err = a.move(r.X, r.Y, r.Z, nil)
	case *gateway.Teleport:
		err = a.move(r.X, r.Y, r.Z, &r.MapID)
	case *gateway.SetFlag:
		a.setFlag(r)
	case *gateway.EditShape:
		err = a.editShape(r)
	case *gateway.EditEffect:
		err = a.editEffect(r)
	case *gateway.EquipGem:
		err = a.equipGem(r)
	case *gateway.UnequipGem:
		err = a.unequipGem(r)
	case *gateway.EditSlot:
		err = a.editSlot(r)
	case *gateway.AddItem:
		err = a.addItem(r)
	case *gateway.ExportAppearance:
		if r.Path == "" {
			return nil, reject(CodeInvalid, "empty appearance path")
		}
		return "Appearance exported to " + r.Path, nil
	case *gateway.ImportAppearance:
		if r.Path == "" {
			return nil, reject(CodeInvalid, "empty appearance path")
		}
		return "Appearance imported from " + r.Path, nil
	case *gateway.GetIsz:
		return append(gateway.Isz(nil), a.isz...), nil
	case *gateway.FixIsz:
		a.isz = append(gateway.Isz(nil), FixedIsz...)
		return "Isz glitch fixed", nil
	case *gateway.Save:
		return a.save(r)
	default:
		return nil, reject(CodeInvalid, "unsupported command %s", command)
	}
	if err != nil {
		return nil, err
	}

	a.current.Normalize()
	return a.current.Clone(), nil
}

func location(isStorage bool) model.Location {
	if isStorage {
		return model.LocationStorage
	}
	return model.LocationInventory
}

func (a *Authority) editQuantity(r *gateway.EditQuantity) error {
	art, ok := a.current.Article(location(r.IsStorage), r.ArticleType, r.Index)
	if !ok {
		return reject(CodeNotFound, "no %s at %d", r.ArticleType, r.Index)
	}
	if art.ID != r.ID {
		return reject(CodeMismatch, "article %d has id %d, not %d", r.Index, art.ID, r.ID)
	}
	art.Amount = r.Value
	return nil
}

func (a *Authority) transformItem(r *gateway.TransformItem) error {
	art, ok := a.current.Article(location(r.IsStorage), r.ArticleType, r.Index)
	if !ok {
		return reject(CodeNotFound, "no %s at %d", r.ArticleType, r.Index)
	}
	if art.ID != r.ID {
		return reject(CodeMismatch, "article %d has id %d, not %d", r.Index, art.ID, r.ID)
	}
	t, info, ok := a.lookup(r.NewID)
	if !ok {
		return reject(CodeNotFound, "unknown article id %d", r.NewID)
	}
	if t.Family() != art.ArticleType.Family() {
		return reject(CodeMismatch, "cannot transform %s into %s", art.ArticleType, t)
	}
	art.ID = r.NewID
	art.Info = info
	return nil
}

func (a *Authority) editStat(r *gateway.EditStat) error {
	for i := range a.current.Stats {
		if a.current.Stats[i].RelOffset == r.RelOffset {
			a.current.Stats[i].Value = r.Value
			return nil
		}
	}
	return reject(CodeNotFound, "no stat at offset %d", r.RelOffset)
}

func (a *Authority) move(x, y, z float64, mapID *model.MapID) error {
	if a.current.Position == nil {
		return reject(CodeNotFound, "save has no position")
	}
	c := &a.current.Position.Coordinates
	c.X, c.Y, c.Z = formatFloat(x), formatFloat(y), formatFloat(z)
	if mapID != nil {
		a.current.Position.LoadedMap = *mapID
	}
	return nil
}

func formatFloat(f float64) model.Value {
	return model.Value(strconv.FormatFloat(f, 'f', -1, 32))
}

func (a *Authority) setFlag(r *gateway.SetFlag) {
	for i := range a.current.Bosses {
		flags := a.current.Bosses[i].Flags
		for j := range flags {
			if flags[j].RelOffset == r.Offset {
				flags[j].CurrentValue = r.NewValue
			}
		}
	}
}

func (a *Authority) upgradeByID(t model.UpgradeType, id uint32) *model.Upgrade {
	for _, loc := range []model.Location{model.LocationInventory, model.LocationStorage} {
		list := a.current.Container(loc).Upgrades[t]
		for i := range list {
			if list[i].ID == id {
				return &list[i]
			}
		}
	}
	return nil
}

func (a *Authority) editShape(r *gateway.EditShape) error {
	u := a.upgradeByID(r.UpgradeType, r.UpgradeID)
	if u == nil {
		return reject(CodeNotFound, "no %s with id %d", r.UpgradeType, r.UpgradeID)
	}
	if !model.ValidShape(r.NewShape, model.ShapesFor(r.UpgradeType)) {
		return reject(CodeInvalid, "shape %q not allowed for %s", r.NewShape, r.UpgradeType)
	}
	u.Shape = r.NewShape
	return nil
}

func (a *Authority) editEffect(r *gateway.EditEffect) error {
	u := a.upgradeByID(r.UpgradeType, r.UpgradeID)
	if u == nil {
		return reject(CodeNotFound, "no %s with id %d", r.UpgradeType, r.UpgradeID)
	}
	if r.Index < 0 || r.Index >= len(u.Effects) {
		return reject(CodeInvalid, "effect index %d out of range", r.Index)
	}
	table := a.gemEffects
	if r.UpgradeType == model.UpgradeRune {
		table = a.runeEffects
	}
	e, ok := table[strconv.FormatUint(uint64(r.NewEffectID), 10)]
	if !ok {
		return reject(CodeNotFound, "unknown effect %d", r.NewEffectID)
	}
	u.Effects[r.Index] = model.Effect{ID: r.NewEffectID, Label: e.Effect}
	if r.Index == 0 {
		u.Info.Effect = e.Effect
	}
	return nil
}

func (a *Authority) slot(isStorage bool, t model.ArticleType, articleIndex, slotIndex int) (*model.Slot, error) {
	art, ok := a.current.Article(location(isStorage), t, articleIndex)
	if !ok {
		return nil, reject(CodeNotFound, "no %s at %d", t, articleIndex)
	}
	if slotIndex < 0 || slotIndex >= len(art.Slots) {
		return nil, reject(CodeNotFound, "no slot %d on %s", slotIndex, art.Info.ItemName)
	}
	return &art.Slots[slotIndex], nil
}

func (a *Authority) equipGem(r *gateway.EquipGem) error {
	gems := a.current.Inventory.Upgrades[model.UpgradeGem]
	if r.UpgradeIndex < 0 || r.UpgradeIndex >= len(gems) {
		return reject(CodeNotFound, "no gem at %d", r.UpgradeIndex)
	}
	slot, err := a.slot(r.IsStorage, r.ArticleType, r.ArticleIndex, r.SlotIndex)
	if err != nil {
		return err
	}
	if slot.Shape == model.ShapeClosed {
		return reject(CodeSlotState, "slot %d is closed", r.SlotIndex)
	}
	if slot.Gem != nil {
		return reject(CodeSlotState, "slot %d is occupied", r.SlotIndex)
	}
	gem := gems[r.UpgradeIndex]
	slot.Gem = &gem
	a.current.Inventory.Upgrades[model.UpgradeGem] = append(gems[:r.UpgradeIndex:r.UpgradeIndex], gems[r.UpgradeIndex+1:]...)
	return nil
}

func (a *Authority) unequipGem(r *gateway.UnequipGem) error {
	slot, err := a.slot(r.IsStorage, r.ArticleType, r.ArticleIndex, r.SlotIndex)
	if err != nil {
		return err
	}
	if slot.Gem == nil {
		return reject(CodeSlotState, "slot %d is empty", r.SlotIndex)
	}
	a.returnGem(slot)
	return nil
}

func (a *Authority) returnGem(slot *model.Slot) {
	if slot.Gem == nil {
		return
	}
	inv := &a.current.Inventory
	if inv.Upgrades == nil {
		inv.Upgrades = make(map[model.UpgradeType][]model.Upgrade)
	}
	inv.Upgrades[model.UpgradeGem] = append(inv.Upgrades[model.UpgradeGem], *slot.Gem)
	slot.Gem = nil
}

func (a *Authority) editSlot(r *gateway.EditSlot) error {
	if !model.ValidShape(r.NewShape, model.SlotShapes) {
		return reject(CodeInvalid, "shape %q not allowed for slots", r.NewShape)
	}
	slot, err := a.slot(r.IsStorage, r.ArticleType, r.ArticleIndex, r.SlotIndex)
	if err != nil {
		return err
	}
	a.returnGem(slot)
	slot.Shape = r.NewShape
	return nil
}

func (a *Authority) addItem(r *gateway.AddItem) error {
	t, info, ok := a.lookup(r.ID)
	if !ok {
		return reject(CodeNotFound, "unknown article id %d", r.ID)
	}
	art := model.Article{
		ID:          r.ID,
		Amount:      r.Quantity,
		ArticleType: t,
		TypeFamily:  t.Family(),
		Info:        info,
	}
	if t.Family() == model.FamilyWeapon {
		art.Slots = []model.Slot{{Shape: model.ShapeClosed}, {Shape: model.ShapeClosed}, {Shape: model.ShapeClosed}}
	}
	inv := a.current.Container(location(r.IsStorage))
	if inv.Articles == nil {
		inv.Articles = make(map[model.ArticleType][]model.Article)
	}
	inv.Articles[t] = append(inv.Articles[t], art)
	return nil
}

func (a *Authority) save(r *gateway.Save) (any, error) {
	if r.Path == "" {
		return nil, reject(CodeInvalid, "empty save path")
	}
	s, err := model.DecodeSnapshot([]byte(r.Save))
	if err != nil {
		return nil, reject(CodeInvalid, "%v", err)
	}
	a.saved[r.Path] = s
	return "Saved to " + r.Path, nil
}

func articleType(key string) model.ArticleType {
	if key == "" {
		return ""
	}
	return model.ArticleType(strings.ToUpper(key[:1]) + key[1:])
}

// lookup 按 id 在目录中查找物品
func (a *Authority) lookup(id uint32) (model.ArticleType, model.ItemInfo, bool) {
	key := strconv.FormatUint(uint64(id), 10)
	for group, entries := range a.weapons {
		if e, ok := entries[key]; ok {
			return articleType(group), model.ItemInfo{
				ItemName:  e.ItemName,
				ItemDesc:  e.ItemDesc,
				ItemImg:   e.ItemImg,
				ExtraInfo: &model.ExtraInfo{Damage: e.Damage},
			}, true
		}
	}
	for group, entries := range a.items {
		if e, ok := entries[key]; ok {
			info := model.ItemInfo{ItemName: e.ItemName, ItemDesc: e.ItemDesc, ItemImg: e.ItemImg}
			if e.Depth != "" || e.Area != "" {
				info.ExtraInfo = &model.ExtraInfo{Depth: e.Depth, Area: e.Area}
			}
			return articleType(group), info, true
		}
	}
	if e, ok := a.armors[key]; ok {
		return model.ArticleArmor, model.ItemInfo{
			ItemName: e.ItemName,
			ItemDesc: e.ItemDesc,
			ItemImg:  e.ItemImg,
			ExtraInfo: &model.ExtraInfo{
				PhysicalDefense:  e.PhysicalDefense,
				ElementalDefense: e.ElementalDefense,
				Resistance:       e.Resistance,
				Beasthood:        e.Beasthood,
			},
		}, true
	}
	return "", model.ItemInfo{}, false
}
