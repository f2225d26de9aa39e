package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// 画布的默认配置。与前端约定保持一致。
const (
	DefaultGridWidth  = 100
	DefaultGridHeight = 100

	// DefaultColor 是未被放置过的单元格的隐含颜色。
	// 写入该颜色等价于删除条目 (归一化)。
	DefaultColor = "#FFFFFF"
)

// Palette 是允许放置的固定调色板。
var Palette = []string{
	"#EF4444", // red
	"#3B82F6", // blue
	"#FBBF24", // yellow
	"#10B981", // green
	"#8B5CF6", // purple
	"#EC4899", // pink
	"#F97316", // orange
	"#06B6D4", // cyan
	"#84CC16", // lime
	"#6366F1", // indigo
	"#F43F5E", // rose
	"#14B8A6", // teal
	"#FFFFFF", // white
	"#D1D5DB", // light gray
	"#6B7280", // gray
	"#374151", // dark gray
	"#000000", // black
	"#92400E", // brown
	"#FDE68A", // beige
	"#FB7185", // coral
}

var paletteSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Palette))
	for _, c := range Palette {
		m[strings.ToUpper(c)] = struct{}{}
	}
	return m
}()

// ValidColor 检查颜色是否属于调色板。比较不区分大小写。
func ValidColor(color string) bool {
	_, ok := paletteSet[strings.ToUpper(color)]
	return ok
}

// NormalizeColor 把颜色归一到调色板的大写写法。
// 提交入口统一归一，下游的擦除判断和网格归一化才能只看一种写法。
func NormalizeColor(color string) string {
	return strings.ToUpper(color)
}

// GridState 是画布状态的稀疏表示。
// key 格式为 "x:y"，缺失的条目隐含为 DefaultColor。
type GridState map[string]string

// CellKey 生成 GridState 使用的坐标 key。
func CellKey(x, y int) string {
	return fmt.Sprintf("%d:%d", x, y)
}

// ParseCellKey 解析 "x:y" 格式的 key。
func ParseCellKey(key string) (x, y int, err error) {
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid cell key %q", key)
	}
	x, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cell key %q: %w", key, err)
	}
	y, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cell key %q: %w", key, err)
	}
	return x, y, nil
}

// Get 返回单元格颜色，未设置时返回 DefaultColor。
func (g GridState) Get(x, y int) string {
	if c, ok := g[CellKey(x, y)]; ok {
		return c
	}
	return DefaultColor
}

// Set 设置单元格颜色。写入 DefaultColor 会删除条目，
// 保证 "从不显式存储默认色" 的不变量。
func (g GridState) Set(x, y int, color string) {
	key := CellKey(x, y)
	if strings.EqualFold(color, DefaultColor) {
		delete(g, key)
		return
	}
	g[key] = color
}
