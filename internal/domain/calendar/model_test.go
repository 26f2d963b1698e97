package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hoejeong/internal/domain/member"
)

var feb2026 = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

func TestBuild_SolarBirthday(t *testing.T) {
	members := []member.Member{{Name: "이몽룡", Birthday: "1990-02-15", Group: "청년부"}}

	got, err := Build(2026, 2, members, feb2026)
	require.NoError(t, err)
	require.Len(t, got.Days[15], 1)
	assert.Equal(t, "이몽룡", got.Days[15][0].DisplayName)
	assert.False(t, got.Days[15][0].IsLunar)
	assert.Len(t, got.Days, 1)
}

func TestBuild_LunarBirthdayProjected(t *testing.T) {
	// Lunar 1/1 falls on 2026-02-17.
	members := []member.Member{{Name: "성춘향", Birthday: "1992.1.1", Lunar: true, Group: "2구역"}}

	got, err := Build(2026, 2, members, feb2026)
	require.NoError(t, err)
	require.Len(t, got.Days[17], 1)
	assert.True(t, got.Days[17][0].IsLunar)

	jan, err := Build(2026, 1, members, feb2026)
	require.NoError(t, err)
	assert.Empty(t, jan.Days)
}

func TestBuild_SkipsUnparseableAndDedupes(t *testing.T) {
	members := []member.Member{
		{Name: "홍길동", Birthday: "모름", Group: "청년부"},
		{Name: "김철수", Birthday: "2-3", Group: "1구역"},
		{Name: "김철수", Birthday: "1985-02-03", Group: "2구역"},
		{Name: "박영희", Birthday: "02-03", Group: "1구역"},
	}

	got, err := Build(2026, 2, members, feb2026)
	require.NoError(t, err)
	require.Len(t, got.Days[3], 2)
	assert.Equal(t, "김철수", got.Days[3][0].DisplayName)
	assert.Equal(t, "박영희", got.Days[3][1].DisplayName)
}

func TestBuild_Feb29OnlyInLeapYears(t *testing.T) {
	members := []member.Member{{Name: "윤달이", Birthday: "2000-02-29", Group: "1구역"}}

	got, err := Build(2026, 2, members, feb2026)
	require.NoError(t, err)
	assert.Empty(t, got.Days)

	leap, err := Build(2028, 2, members, feb2026)
	require.NoError(t, err)
	assert.Len(t, leap.Days[29], 1)
}

func TestBuild_TodayOnlyInCurrentMonth(t *testing.T) {
	cur, err := Build(2026, 2, nil, feb2026)
	require.NoError(t, err)
	assert.Equal(t, 10, cur.Today)

	other, err := Build(2026, 3, nil, feb2026)
	require.NoError(t, err)
	assert.Zero(t, other.Today)
}

func TestBuild_RejectsBadMonth(t *testing.T) {
	_, err := Build(2026, 13, nil, feb2026)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestGrid_SundayFirst(t *testing.T) {
	// 2026-02-01 is a Sunday and February 2026 has 28 days: four full weeks.
	grid := Grid(2026, 2)
	require.Len(t, grid, 4)
	assert.Equal(t, [7]int{1, 2, 3, 4, 5, 6, 7}, grid[0])
	assert.Equal(t, [7]int{22, 23, 24, 25, 26, 27, 28}, grid[3])

	// 2026-01-01 is a Thursday.
	jan := Grid(2026, 1)
	assert.Equal(t, [7]int{0, 0, 0, 0, 1, 2, 3}, jan[0])
	assert.Equal(t, [7]int{25, 26, 27, 28, 29, 30, 31}, jan[len(jan)-1])
}
