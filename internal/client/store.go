package client

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Evan-Lab/cloud-native/internal/domain"
	"github.com/Evan-Lab/cloud-native/internal/dto"
)

// Tool 是当前的绘制工具
type Tool int

const (
	ToolPaint Tool = iota
	ToolErase // 擦除等于绘制默认色
)

// DefaultCooldownTicks 是未显式配置时的本地冷却 tick 数
const DefaultCooldownTicks = 35

// Config 控制 Store 的行为
type Config struct {
	Width  int
	Height int

	// CooldownTicks 是每次放置后的本地冷却 tick 数，
	// 缺省为 DefaultCooldownTicks
	CooldownTicks int

	// DefaultColor 是空单元格的颜色，缺省为 domain.DefaultColor
	DefaultColor string

	// StrictConsistency 控制提交失败时的处置：
	// true 回滚乐观写入（严格模式），false 保留并等待广播纠正（宽松模式）。
	StrictConsistency bool
}

func (c *Config) applyDefaults() {
	if c.Width <= 0 {
		c.Width = domain.DefaultGridWidth
	}
	if c.Height <= 0 {
		c.Height = domain.DefaultGridHeight
	}
	if c.CooldownTicks <= 0 {
		c.CooldownTicks = DefaultCooldownTicks
	}
	if c.DefaultColor == "" {
		c.DefaultColor = domain.DefaultColor
	}
}

// Store 是客户端的本地画布存储：持有网格的当前最佳视图和提交资格。
// 每个画布一个实例，由构造方显式持有并传递，不做进程级单例。
// 网格只被本 Store 修改，外部组件不直接触碰。
type Store struct {
	mu sync.Mutex

	canvasID string
	cfg      Config

	grid     domain.GridState
	cooldown cooldownTimer

	tool          Tool
	selectedColor string
	sessionActive bool
	closed        bool

	submitter  Submitter
	reconciler Reconciler
	log        *logrus.Entry
}

// NewStore 创建一个画布的本地存储。
// submitter 为 nil 时 Place 只做本地写入（离线/只读场景）。
// reconciler 为 nil 时使用 LastWriteWins。
func NewStore(canvasID string, cfg Config, submitter Submitter, reconciler Reconciler) *Store {
	cfg.applyDefaults()
	if reconciler == nil {
		reconciler = LastWriteWins{}
	}
	return &Store{
		canvasID:      canvasID,
		cfg:           cfg,
		grid:          make(domain.GridState),
		cooldown:      newCooldownTimer(cfg.CooldownTicks),
		tool:          ToolPaint,
		selectedColor: domain.Palette[0],
		submitter:     submitter,
		reconciler:    reconciler,
		log: logrus.WithFields(logrus.Fields{
			"component": "canvas_store",
			"canvas_id": canvasID,
		}),
	}
}

// Place 尝试在 (x, y) 放置当前工具的有效颜色。
// 越界是 no-op；冷却中返回 CooldownActive 条件；会话非 ACTIVE 时拒绝。
// 乐观写入先于提交：提交失败时宽松模式保留写入，严格模式回滚。
func (s *Store) Place(ctx context.Context, x, y int) error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if !s.sessionActive {
		s.mu.Unlock()
		return ErrSessionNotActive
	}
	if !s.inBounds(x, y) {
		s.mu.Unlock()
		return ErrOutOfBounds
	}
	if s.cooldown.Active() {
		remaining := s.cooldown.Remaining()
		s.mu.Unlock()
		s.log.WithField("remaining", remaining).Debug("Placement rejected: cooldown active")
		return &CooldownActiveError{RemainingTicks: remaining}
	}

	// 有效颜色：擦除即绘制默认色，存储层会把它规范化为删除
	color := s.selectedColor
	if s.tool == ToolErase {
		color = s.cfg.DefaultColor
	}

	key := domain.CellKey(x, y)
	previous, hadPrevious := s.grid[key]

	// 乐观应用 + 启动冷却。冷却在提交前启动：
	// 即使提交失败，这次放置也消耗了本地配额。
	s.grid.Set(x, y, color)
	s.cooldown.Start()
	s.mu.Unlock()

	if s.submitter == nil {
		return nil
	}

	req := dto.PlacementRequest{X: &x, Y: &y, Color: color, CanvasID: s.canvasID}
	if err := s.submitter.SubmitPlacement(ctx, req); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"x": x, "y": y}).Warn("Placement submit failed")
		if s.cfg.StrictConsistency {
			// 严格模式：恢复该单元格提交前的值
			s.mu.Lock()
			if hadPrevious {
				s.grid[key] = previous
			} else {
				delete(s.grid, key)
			}
			s.mu.Unlock()
		}
		return err
	}
	return nil
}

// SyncPixel 应用一个远端确认的单元格值，覆盖任何本地推测值。
// 用于本地用户自己写入的回声和其他用户的写入，与冷却无关。
// 越界的值被丢弃。
func (s *Store) SyncPixel(x, y int, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if !s.inBounds(x, y) {
		s.log.WithFields(logrus.Fields{"x": x, "y": y}).Warn("Dropping out-of-bounds remote pixel")
		return
	}
	local := s.grid.Get(x, y)
	s.grid.Set(x, y, s.reconciler.Merge(local, color))
}

// ExportGrid 导出当前网格的稀疏表示
func (s *Store) ExportGrid() dto.SnapshotDTO {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dto.NewSnapshotDTO(s.cfg.Width, s.cfg.Height, s.grid)
}

// ImportGrid 用快照替换当前网格，用于冷启动或重连后的全量同步。
// 越界或默认色的条目被规范化掉。
func (s *Store) ImportGrid(snapshot dto.SnapshotDTO) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid = make(domain.GridState, len(snapshot.Pixels))
	for _, p := range snapshot.Pixels {
		if !s.inBounds(p.X, p.Y) {
			continue
		}
		s.grid.Set(p.X, p.Y, p.Color)
	}
}

// Tick 推进冷却一个时间单位
func (s *Store) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldown.Tick()
}

// GetColor 返回 (x, y) 的当前颜色，未设置或越界时返回默认色
func (s *Store) GetColor(x, y int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inBounds(x, y) {
		return s.cfg.DefaultColor
	}
	return s.grid.Get(x, y)
}

// IsOnCooldown 返回本地冷却是否仍在进行
func (s *Store) IsOnCooldown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cooldown.Active()
}

// RemainingCooldown 返回剩余冷却 tick 数
func (s *Store) RemainingCooldown() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cooldown.Remaining()
}

// SetTool 切换当前工具
func (s *Store) SetTool(tool Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tool = tool
}

// SetSelectedColor 设置画笔颜色；不在调色板里的颜色被忽略
func (s *Store) SetSelectedColor(color string) {
	if !domain.ValidColor(color) {
		s.log.WithField("color", color).Warn("Ignoring color outside palette")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedColor = color
}

// SetSessionActive 更新会话门禁。Store 只观察这个标志，
// 会话状态的变迁由服务端管理。
func (s *Store) SetSessionActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionActive = active
}

// Close 结束这个 Store 的生命周期并丢弃网格。
// 之后 Place 返回 ErrStoreClosed，入站同步被静默丢弃。
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.sessionActive = false
	s.grid = make(domain.GridState)
}

// CanvasID 返回这个 Store 绑定的画布 ID
func (s *Store) CanvasID() string { return s.canvasID }

func (s *Store) inBounds(x, y int) bool {
	return x >= 0 && x < s.cfg.Width && y >= 0 && y < s.cfg.Height
}
