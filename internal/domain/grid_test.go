package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evan-Lab/cloud-native/internal/domain"
)

func TestCellKeyRoundTrip(t *testing.T) {
	cases := [][2]int{{0, 0}, {5, 7}, {99, 0}, {0, 99}, {-1, 3}}
	for _, c := range cases {
		key := domain.CellKey(c[0], c[1])
		x, y, err := domain.ParseCellKey(key)
		require.NoError(t, err, key)
		assert.Equal(t, c[0], x)
		assert.Equal(t, c[1], y)
	}
}

func TestParseCellKeyRejectsGarbage(t *testing.T) {
	for _, key := range []string{"", "5", "a:b", "1:", ":2", "1:2:3junk"} {
		_, _, err := domain.ParseCellKey(key)
		assert.Error(t, err, key)
	}
}

func TestGridStateSetNormalizesDefaultColor(t *testing.T) {
	grid := make(domain.GridState)
	grid.Set(3, 3, "#EF4444")
	require.Equal(t, "#EF4444", grid.Get(3, 3))

	// 写默认色等价于删除条目
	grid.Set(3, 3, domain.DefaultColor)
	assert.Equal(t, domain.DefaultColor, grid.Get(3, 3))
	assert.Empty(t, grid)

	// 大小写不敏感的归一化
	grid.Set(4, 4, "#ffffff")
	assert.Empty(t, grid)
}

func TestGridStateGetUnsetReturnsDefault(t *testing.T) {
	grid := make(domain.GridState)
	assert.Equal(t, domain.DefaultColor, grid.Get(10, 20))
}

func TestValidColorCaseInsensitive(t *testing.T) {
	assert.True(t, domain.ValidColor("#EF4444"))
	assert.True(t, domain.ValidColor("#ef4444"))
	assert.True(t, domain.ValidColor(domain.DefaultColor))
	assert.False(t, domain.ValidColor("#ABCDEF"))
	assert.False(t, domain.ValidColor("red"))
	assert.False(t, domain.ValidColor(""))
}

func TestNormalizeColorUppercases(t *testing.T) {
	assert.Equal(t, "#EF4444", domain.NormalizeColor("#ef4444"))
	assert.Equal(t, domain.DefaultColor, domain.NormalizeColor("#ffffff"))
	assert.Equal(t, "#000000", domain.NormalizeColor("#000000"))
}

func TestPlacementEventIsEraseCaseInsensitive(t *testing.T) {
	// 擦除判断和 GridState.Set 的归一化必须认同一套写法，
	// 否则小写默认色会被当普通颜色写进网格。
	for _, color := range []string{domain.DefaultColor, "#ffffff", "#FfFfFf"} {
		event := domain.PlacementEvent{Color: color}
		assert.True(t, event.IsErase(), color)
	}
	event := domain.PlacementEvent{Color: "#EF4444"}
	assert.False(t, event.IsErase())
}

func TestCanvasInBounds(t *testing.T) {
	canvas := &domain.Canvas{Width: 100, Height: 50}
	assert.True(t, canvas.InBounds(0, 0))
	assert.True(t, canvas.InBounds(99, 49))
	assert.False(t, canvas.InBounds(100, 0))
	assert.False(t, canvas.InBounds(0, 50))
	assert.False(t, canvas.InBounds(-1, 10))
}

func TestCanvasIsActive(t *testing.T) {
	for status, want := range map[domain.SessionStatus]bool{
		domain.SessionPending: false,
		domain.SessionActive:  true,
		domain.SessionPaused:  false,
		domain.SessionEnded:   false,
	} {
		canvas := &domain.Canvas{Status: status}
		assert.Equal(t, want, canvas.IsActive(), string(status))
	}
}
