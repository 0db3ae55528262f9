package gateway

import "github.com/lk2023060901/xdooria-editor/app/editor/internal/model"

// Request 一条后端命令，字段即命令参数
type Request interface {
	Command() string
}

// 命令名
const (
	CmdEditQuantity      = "edit_quantity"
	CmdTransformItem     = "transform_item"
	CmdEditStat          = "edit_stat"
	CmdSetUsername       = "set_username"
	CmdSetPlaytime       = "set_playtime"
	CmdEditCoordinates   = "edit_coordinates"
	CmdTeleport          = "teleport"
	CmdSetFlag           = "set_flag"
	CmdEditShape         = "edit_shape"
	CmdEditEffect        = "edit_effect"
	CmdEquipGem          = "equip_gem"
	CmdUnequipGem        = "unequip_gem"
	CmdEditSlot          = "edit_slot"
	CmdExportAppearance  = "export_appearance"
	CmdImportAppearance  = "import_appearance"
	CmdFixIsz            = "fix_isz"
	CmdGetIsz            = "get_isz"
	CmdAddItem           = "add_item"
	CmdReturnWeapons     = "return_weapons"
	CmdReturnItems       = "return_items"
	CmdReturnArmors      = "return_armors"
	CmdReturnGemEffects  = "return_gem_effects"
	CmdReturnRuneEffects = "return_rune_effects"
	CmdMakeSave          = "make_save"
	CmdSave              = "save"
)

// ===== 返回快照的命令 =====

type EditQuantity struct {
	ID          uint32            `json:"id"`
	ArticleType model.ArticleType `json:"articleType"`
	Index       int               `json:"index"`
	Value       uint32            `json:"value"`
	IsStorage   bool              `json:"isStorage"`
}

func (EditQuantity) Command() string { return CmdEditQuantity }

type TransformItem struct {
	Index       int               `json:"index"`
	ID          uint32            `json:"id"`
	NewID       uint32            `json:"newId"`
	ArticleType model.ArticleType `json:"articleType"`
	IsStorage   bool              `json:"isStorage"`
}

func (TransformItem) Command() string { return CmdTransformItem }

type EditStat struct {
	RelOffset int    `json:"relOffset"`
	Length    int    `json:"length"`
	Times     int    `json:"times"`
	Value     uint32 `json:"value"`
}

func (EditStat) Command() string { return CmdEditStat }

type SetUsername struct {
	NewUsername string `json:"newUsername"`
}

func (SetUsername) Command() string { return CmdSetUsername }

// SetPlaytime 时长以小端 4 字节传递
type SetPlaytime struct {
	NewPlaytime [4]byte `json:"newPlaytime"`
}

func (SetPlaytime) Command() string { return CmdSetPlaytime }

type EditCoordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (EditCoordinates) Command() string { return CmdEditCoordinates }

type Teleport struct {
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
	Z     float64     `json:"z"`
	MapID model.MapID `json:"mapId"`
}

func (Teleport) Command() string { return CmdTeleport }

type SetFlag struct {
	Offset   int   `json:"offset"`
	NewValue uint8 `json:"newValue"`
}

func (SetFlag) Command() string { return CmdSetFlag }

type EditShape struct {
	UpgradeID   uint32            `json:"upgradeId"`
	UpgradeType model.UpgradeType `json:"upgradeType"`
	NewShape    model.Shape       `json:"newShape"`
}

func (EditShape) Command() string { return CmdEditShape }

type EditEffect struct {
	UpgradeID   uint32            `json:"upgradeId"`
	UpgradeType model.UpgradeType `json:"upgradeType"`
	NewEffectID uint32            `json:"newEffectId"`
	Index       int               `json:"index"`
}

func (EditEffect) Command() string { return CmdEditEffect }

type EquipGem struct {
	UpgradeIndex int               `json:"upgradeIndex"`
	ArticleType  model.ArticleType `json:"articleType"`
	ArticleIndex int               `json:"articleIndex"`
	SlotIndex    int               `json:"slotIndex"`
	IsStorage    bool              `json:"isStorage"`
}

func (EquipGem) Command() string { return CmdEquipGem }

type UnequipGem struct {
	ArticleType  model.ArticleType `json:"articleType"`
	ArticleIndex int               `json:"articleIndex"`
	SlotIndex    int               `json:"slotIndex"`
	IsStorage    bool              `json:"isStorage"`
}

func (UnequipGem) Command() string { return CmdUnequipGem }

type EditSlot struct {
	IsStorage    bool              `json:"isStorage"`
	ArticleType  model.ArticleType `json:"articleType"`
	ArticleIndex int               `json:"articleIndex"`
	SlotIndex    int               `json:"slotIndex"`
	NewShape     model.Shape       `json:"newShape"`
}

func (EditSlot) Command() string { return CmdEditSlot }

type AddItem struct {
	ID        uint32 `json:"id"`
	Quantity  uint32 `json:"quantity"`
	IsStorage bool   `json:"isStorage"`
}

func (AddItem) Command() string { return CmdAddItem }

// MakeSave 打开存档
type MakeSave struct {
	Path string `json:"path"`
}

func (MakeSave) Command() string { return CmdMakeSave }

// ===== 返回其他结果的命令 =====

// ExportAppearance 返回提示消息
type ExportAppearance struct {
	Path string `json:"path"`
}

func (ExportAppearance) Command() string { return CmdExportAppearance }

// ImportAppearance 返回提示消息
type ImportAppearance struct {
	Path string `json:"path"`
}

func (ImportAppearance) Command() string { return CmdImportAppearance }

// FixIsz 返回提示消息
type FixIsz struct{}

func (FixIsz) Command() string { return CmdFixIsz }

// GetIsz 返回 isz 字节
type GetIsz struct{}

func (GetIsz) Command() string { return CmdGetIsz }

// Save 写回存档，返回提示消息
type Save struct {
	Save string `json:"save"`
	Path string `json:"path"`
}

func (Save) Command() string { return CmdSave }

type ReturnWeapons struct{}

func (ReturnWeapons) Command() string { return CmdReturnWeapons }

type ReturnItems struct{}

func (ReturnItems) Command() string { return CmdReturnItems }

type ReturnArmors struct{}

func (ReturnArmors) Command() string { return CmdReturnArmors }

type ReturnGemEffects struct{}

func (ReturnGemEffects) Command() string { return CmdReturnGemEffects }

type ReturnRuneEffects struct{}

func (ReturnRuneEffects) Command() string { return CmdReturnRuneEffects }

var factories = map[string]func() Request{
	CmdEditQuantity:      func() Request { return &EditQuantity{} },
	CmdTransformItem:     func() Request { return &TransformItem{} },
	CmdEditStat:          func() Request { return &EditStat{} },
	CmdSetUsername:       func() Request { return &SetUsername{} },
	CmdSetPlaytime:       func() Request { return &SetPlaytime{} },
	CmdEditCoordinates:   func() Request { return &EditCoordinates{} },
	CmdTeleport:          func() Request { return &Teleport{} },
	CmdSetFlag:           func() Request { return &SetFlag{} },
	CmdEditShape:         func() Request { return &EditShape{} },
	CmdEditEffect:        func() Request { return &EditEffect{} },
	CmdEquipGem:          func() Request { return &EquipGem{} },
	CmdUnequipGem:        func() Request { return &UnequipGem{} },
	CmdEditSlot:          func() Request { return &EditSlot{} },
	CmdExportAppearance:  func() Request { return &ExportAppearance{} },
	CmdImportAppearance:  func() Request { return &ImportAppearance{} },
	CmdFixIsz:            func() Request { return &FixIsz{} },
	CmdGetIsz:            func() Request { return &GetIsz{} },
	CmdAddItem:           func() Request { return &AddItem{} },
	CmdReturnWeapons:     func() Request { return &ReturnWeapons{} },
	CmdReturnItems:       func() Request { return &ReturnItems{} },
	CmdReturnArmors:      func() Request { return &ReturnArmors{} },
	CmdReturnGemEffects:  func() Request { return &ReturnGemEffects{} },
	CmdReturnRuneEffects: func() Request { return &ReturnRuneEffects{} },
	CmdMakeSave:          func() Request { return &MakeSave{} },
	CmdSave:              func() Request { return &Save{} },
}

// NewRequest 按命令名创建空请求，供服务端解码参数
func NewRequest(command string) (Request, bool) {
	f, ok := factories[command]
	if !ok {
		return nil, false
	}
	return f(), true
}

// Commands 全部命令名
func Commands() []string {
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	return out
}
