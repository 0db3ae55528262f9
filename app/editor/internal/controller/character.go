package controller

import (
	"context"
	"math"
	"unicode/utf8"

	"github.com/lk2023060901/xdooria-editor/app/editor/internal/gateway"
	"github.com/lk2023060901/xdooria-editor/app/editor/internal/model"
)

// EditStats 按快照中的顺序逐条发送有变化的属性，每条等待完成后再发下一条
// values 以属性名为键，超过上限的值被截断
func (c *Controller) EditStats(ctx context.Context, values map[string]uint32) (*model.Snapshot, error) {
	const op = "edit_stat"
	s, err := c.current(op)
	if err != nil {
		return nil, err
	}
	for name := range values {
		if _, ok := s.StatByName(name); !ok {
			return nil, invalid(op, "unknown stat %q", name)
		}
	}

	var edits []gateway.EditStat
	for _, st := range s.Stats {
		v, ok := values[st.Name]
		if !ok {
			continue
		}
		if v = model.ClampStat(v); v == st.Value {
			continue
		}
		edits = append(edits, gateway.EditStat{
			RelOffset: st.RelOffset,
			Length:    st.Length,
			Times:     st.Times,
			Value:     v,
		})
	}

	for _, e := range edits {
		if s, err = c.invoke(ctx, e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SetUsername 修改角色名
func (c *Controller) SetUsername(ctx context.Context, name string) (*model.Snapshot, error) {
	const op = "set_username"
	if _, err := c.current(op); err != nil {
		return nil, err
	}
	n := utf8.RuneCountInString(name)
	if n == 0 || n > model.MaxUsernameLength {
		return nil, invalid(op, "username must be 1-%d characters", model.MaxUsernameLength)
	}
	return c.invoke(ctx, gateway.SetUsername{NewUsername: name})
}

// SetPlaytime 修改游戏时长
func (c *Controller) SetPlaytime(ctx context.Context, p model.Playtime) (*model.Snapshot, error) {
	const op = "set_playtime"
	if _, err := c.current(op); err != nil {
		return nil, err
	}
	ms, err := p.ToMilliseconds()
	if err != nil {
		return nil, invalid(op, "%v", err)
	}
	return c.invoke(ctx, gateway.SetPlaytime{NewPlaytime: model.EncodePlaytime(ms)})
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// EditCoordinates 修改当前位置
func (c *Controller) EditCoordinates(ctx context.Context, x, y, z float64) (*model.Snapshot, error) {
	const op = "edit_coordinates"
	s, err := c.current(op)
	if err != nil {
		return nil, err
	}
	if s.Position == nil {
		return nil, invalid(op, "save has no position")
	}
	if !finite(x, y, z) {
		return nil, invalid(op, "coordinates must be finite")
	}
	return c.invoke(ctx, gateway.EditCoordinates{X: x, Y: y, Z: z})
}

// Teleport 传送到已知地点
func (c *Controller) Teleport(ctx context.Context, destination string) (*model.Snapshot, error) {
	const op = "teleport"
	s, err := c.current(op)
	if err != nil {
		return nil, err
	}
	if s.Position == nil {
		return nil, invalid(op, "save has no position")
	}
	d, ok := model.FindDestination(destination)
	if !ok {
		return nil, invalid(op, "unknown destination %q", destination)
	}
	return c.invoke(ctx, gateway.Teleport{X: d.X, Y: d.Y, Z: d.Z, MapID: d.MapID})
}

// ===== 标记 =====

// FlagWrite 一次单字节写入
type FlagWrite struct {
	Offset int
	Value  uint8
}

// SetFlag 写入单个标记字节
func (c *Controller) SetFlag(ctx context.Context, offset int, value uint8) (*model.Snapshot, error) {
	return c.SetFlags(ctx, []FlagWrite{{Offset: offset, Value: value}})
}

// SetFlags 按顺序逐条写入
func (c *Controller) SetFlags(ctx context.Context, writes []FlagWrite) (*model.Snapshot, error) {
	const op = "set_flag"
	s, err := c.current(op)
	if err != nil {
		return nil, err
	}
	for _, w := range writes {
		if w.Offset < 0 {
			return nil, invalid(op, "negative offset %d", w.Offset)
		}
	}
	for _, w := range writes {
		if s, err = c.invoke(ctx, gateway.SetFlag{Offset: w.Offset, NewValue: w.Value}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ApplyFlagPreset 写入预设的连续字节
func (c *Controller) ApplyFlagPreset(ctx context.Context, name string) (*model.Snapshot, error) {
	preset, ok := model.FindFlagPreset(name)
	if !ok {
		return nil, invalid("set_flag", "unknown preset %q", name)
	}
	writes := make([]FlagWrite, len(preset.Values))
	for i, v := range preset.Values {
		writes[i] = FlagWrite{Offset: preset.Offset + i, Value: v}
	}
	return c.SetFlags(ctx, writes)
}

// ToggleBoss 把首领的每一个标记写为击杀值或存活值
func (c *Controller) ToggleBoss(ctx context.Context, name string, dead bool) (*model.Snapshot, error) {
	const op = "set_flag"
	s, err := c.current(op)
	if err != nil {
		return nil, err
	}
	var boss *model.Boss
	for i := range s.Bosses {
		if s.Bosses[i].Name == name {
			boss = &s.Bosses[i]
			break
		}
	}
	if boss == nil {
		return nil, invalid(op, "unknown boss %q", name)
	}
	if len(boss.Flags) == 0 {
		return nil, invalid(op, "boss %q has no flags", name)
	}

	writes := make([]FlagWrite, len(boss.Flags))
	for i, f := range boss.Flags {
		v := f.AliveValue
		if dead {
			v = f.DeadValue
		}
		writes[i] = FlagWrite{Offset: f.RelOffset, Value: v}
	}
	return c.SetFlags(ctx, writes)
}
