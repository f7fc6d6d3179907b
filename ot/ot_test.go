package ot

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagString(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfix.fonts")
	defer teardown()
	assert.Equal(t, "OS/2", T("OS/2").String())
	assert.Equal(t, "cmap", T("cmap").String())
	assert.Equal(t, "SVG ", T("SVG").String(), "short tags are padded with spaces")
}

func TestFontTableRoundtrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfix.fonts")
	defer teardown()
	f := NewFont("Test-Regular")
	require.Nil(t, f.Table(TagHead))
	f.SetTable(NewHead())
	require.NotNil(t, f.Head())
	assert.True(t, f.Has(TagHead))
	assert.True(t, f.DeleteTable(TagHead))
	assert.False(t, f.DeleteTable(TagHead), "second delete must report absence")
	assert.Nil(t, f.Head())
}

func TestFontTableTagsSorted(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfix.fonts")
	defer teardown()
	f := NewFont("Test-Regular")
	f.SetTable(NewName())
	f.SetTable(NewHead())
	f.SetTable(NewOS2())
	tags := f.TableTags()
	require.Len(t, tags, 3)
	for i := 1; i < len(tags); i++ {
		assert.Less(t, uint32(tags[i-1]), uint32(tags[i]))
	}
}

func TestGlyphOrderRenumbering(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfix.fonts")
	defer teardown()
	f := NewFont("Test-Regular")
	maxp := NewMaxp()
	maxp.NumGlyphs = 2
	f.SetTable(maxp)
	f.SetGlyphOrder([]string{".notdef", "A", "B"})
	assert.EqualValues(t, 3, maxp.NumGlyphs, "maxp must follow the glyph order")
	assert.Equal(t, "B", f.GlyphName(2))
	assert.Equal(t, "", f.GlyphName(17))
}

func TestNameBestNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfix.fonts")
	defer teardown()
	f := NewFont("Test-Bold")
	name := NewName()
	name.Set(NameIDFamily, PlatformWindows, 1, LanguageWindowsEnUS, "Test")
	name.Set(NameIDSubfamily, PlatformWindows, 1, LanguageWindowsEnUS, "Bold")
	f.SetTable(name)
	assert.Equal(t, "Test", f.FamilyName())
	assert.Equal(t, "Bold", f.StyleName())

	name.Set(NameIDTypoFamily, PlatformWindows, 1, LanguageWindowsEnUS, "Test Display")
	name.Set(NameIDTypoSubfamily, PlatformWindows, 1, LanguageWindowsEnUS, "SemiBold")
	assert.Equal(t, "Test Display", f.FamilyName(), "typographic family name wins")
	assert.Equal(t, "SemiBold", f.StyleName(), "typographic subfamily name wins")
}

func TestNameRemoveIf(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfix.fonts")
	defer teardown()
	name := NewName()
	name.Set(1, PlatformMacintosh, 0, 0, "Test")
	name.Set(1, PlatformWindows, 1, LanguageWindowsEnUS, "Test")
	removed := name.RemoveIf(func(r NameRecord) bool {
		return r.PlatformID == PlatformMacintosh
	})
	assert.True(t, removed)
	assert.Len(t, name.Records, 1)
	removed = name.RemoveIf(func(r NameRecord) bool {
		return r.PlatformID == PlatformMacintosh
	})
	assert.False(t, removed, "nothing left to remove")
}

func TestCmapLookupPreference(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfix.fonts")
	defer teardown()
	cmap := NewCmap()
	cmap.Subtables = append(cmap.Subtables,
		&CmapSubtable{Format: 4, PlatformID: 3, EncodingID: 1,
			Mapping: map[rune]string{'A': "A.bmp"}},
		&CmapSubtable{Format: 12, PlatformID: 3, EncodingID: 10,
			Mapping: map[rune]string{'A': "A", 0x1F600: "smile"}},
	)
	g, ok := cmap.GlyphFor('A')
	require.True(t, ok)
	assert.Equal(t, "A", g, "UCS-4 subtable is consulted first")
	g, ok = cmap.GlyphFor(0x1F600)
	require.True(t, ok)
	assert.Equal(t, "smile", g)
	_, ok = cmap.GlyphFor('Z')
	assert.False(t, ok)
}

func TestCmapPartition(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfix.fonts")
	defer teardown()
	cmap := NewCmap()
	cmap.Subtables = append(cmap.Subtables,
		&CmapSubtable{Format: 4, PlatformID: 0, EncodingID: 3},
		&CmapSubtable{Format: 0, PlatformID: 1, EncodingID: 0},
		&CmapSubtable{Format: 4, PlatformID: 3, EncodingID: 1},
	)
	kept, dropped := cmap.Partition(func(st *CmapSubtable) bool {
		return st.PlatformID != PlatformMacintosh
	})
	assert.Len(t, kept, 2)
	require.Len(t, dropped, 1)
	assert.EqualValues(t, 1, dropped[0].PlatformID)
	assert.Len(t, cmap.Subtables, 2, "cmap must be left with the kept subtables")
}

func TestAdopt(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfix.fonts")
	defer teardown()
	f := NewFont("Test-Regular")
	f.SetTable(NewHead())
	rebuilt := NewFont("Test-Regular.rebuilt")
	rebuilt.SetTable(NewSvg())
	rebuilt.SetGlyphOrder([]string{".notdef"})
	f.Adopt(rebuilt)
	assert.False(t, f.Has(TagHead))
	assert.True(t, f.Has(TagSVG))
	assert.Equal(t, []string{".notdef"}, f.GlyphOrder())
	assert.Equal(t, "Test-Regular", f.Fontname, "identity stays with the handle")
}
