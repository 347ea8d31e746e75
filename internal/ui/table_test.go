package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// KeyValueBlock
// ---------------------------------------------------------------------------

func TestKeyValueBlockContainsTitleAndPairs(t *testing.T) {
	result := KeyValueBlock("Office #1", [][2]string{
		{"Name", "Corner room"},
		{"Price/hour", "10 ETH"},
	})
	assert.Contains(t, result, "Office #1")
	assert.Contains(t, result, "Corner room")
	assert.Contains(t, result, "10 ETH")
}

func TestKeyValueBlockPreservesOrder(t *testing.T) {
	result := KeyValueBlock("", [][2]string{
		{"First", "AAA"},
		{"Second", "BBB"},
		{"Third", "CCC"},
	})
	i1, i2, i3 := strings.Index(result, "First"), strings.Index(result, "Second"), strings.Index(result, "Third")
	require.Greater(t, i1, -1)
	assert.Less(t, i1, i2)
	assert.Less(t, i2, i3)
}

func TestKeyValueBlockHasBorder(t *testing.T) {
	result := KeyValueBlock("Bordered", [][2]string{{"Key", "Val"}})
	assert.Contains(t, result, "╭")
	assert.Contains(t, result, "╰")
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func TestNewTableCreatesEmptyTable(t *testing.T) {
	tbl := NewTable([]Column{{Title: "ID", Width: 4}, {Title: "Name", Width: 20}})
	assert.Len(t, tbl.Columns, 2)
	assert.Empty(t, tbl.Rows)
	assert.Equal(t, -1, tbl.SelIdx)
}

func TestTableRenderContainsHeadersAndRows(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "ID", Width: 4},
		{Title: "Name", Width: 12},
		{Title: "Status", Width: 10},
	})
	tbl.AddRow(Row{"1", "Corner room", "booked"})
	tbl.AddRow(Row{"2", "Annex", "available"})

	result := tbl.Render()
	for _, s := range []string{"ID", "Name", "Status", "Corner room", "booked", "Annex", "available"} {
		assert.Contains(t, result, s)
	}
	assert.Contains(t, result, "----", "should have a divider line")
	assert.Less(t, strings.Index(result, "Corner room"), strings.Index(result, "Annex"))
}

func TestTableRenderRowShorterThanColumns(t *testing.T) {
	tbl := NewTable([]Column{{Title: "A", Width: 5}, {Title: "B", Width: 5}, {Title: "C", Width: 5}})
	tbl.AddRow(Row{"only1"})
	assert.Contains(t, tbl.Render(), "only1")
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab   ", fit("ab", 5, false))
	assert.Equal(t, "   ab", fit("ab", 5, true))
	assert.Equal(t, "abcde", fit("abcde", 5, false))
	assert.Equal(t, "abcd…", fit("abcdefgh", 5, false))
	assert.Equal(t, "", fit("", 0, false))
}

func TestFitStyledValueKeepsEscapes(t *testing.T) {
	red := "\x1b[31mabcdefgh\x1b[0m"
	out := fit(red, 5, false)
	assert.Equal(t, 5, lipgloss.Width(out))
	assert.Equal(t, "\x1b[31mabcd…\x1b[0m", out)
	assert.Equal(t, "abcd…", ansi.Strip(out))
}
