package ot

import (
	"sort"
)

// --- Tag -------------------------------------------------------------------

// Tag is defined by the OpenType spec as:
// Array of four uint8s (length = 32 bits) used to identify a table,
// design-variation axis, script, language system, feature, or baseline.
type Tag uint32

// MakeTag creates a Tag from 4 bytes.
// If b is shorter or longer, it will be silently extended or cut as appropriate.
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate.
func T(t string) Tag {
	t = (t + "    ")[:4]
	return MakeTag([]byte(t))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Font ------------------------------------------------------------------

// Font represents the internal structure of an OpenType font.
// It is a collection of metadata tables, addressed by tag, plus the
// glyph-order slice which assigns glyph indices to glyph names.
//
// A Font is owned exclusively by its caller for its lifetime. This package
// and its clients mutate table fields in place; no internal locking is done.
type Font struct {
	Fontname   string // identifier for diagnostics, usually the file base name
	Filepath   string // where the binary resource lives, if known
	tables     map[Tag]Table
	glyphOrder []string
}

// NewFont creates an empty font with no tables.
func NewFont(name string) *Font {
	return &Font{
		Fontname: name,
		tables:   make(map[Tag]Table),
	}
}

// Table returns the font table for a given tag. If a table for a tag cannot
// be found in the font, nil is returned.
func (f *Font) Table(tag Tag) Table {
	if t, ok := f.tables[tag]; ok {
		return t
	}
	return nil
}

// Has is a existence check for a table with the given tag.
func (f *Font) Has(tag Tag) bool {
	_, ok := f.tables[tag]
	return ok
}

// SetTable inserts or replaces a table, addressed by its tag.
func (f *Font) SetTable(t Table) {
	if t == nil {
		return
	}
	f.tables[t.Tag()] = t
}

// DeleteTable removes the table with the given tag from the font.
// It returns false if the font holds no such table.
func (f *Font) DeleteTable(tag Tag) bool {
	if _, ok := f.tables[tag]; !ok {
		return false
	}
	delete(f.tables, tag)
	return true
}

// TableTags returns a sorted list of tags, one for each table contained in
// the font.
func (f *Font) TableTags() []Tag {
	tags := make([]Tag, 0, len(f.tables))
	for tag := range f.tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// GlyphOrder returns the font's glyph names in glyph-index order.
// Callers must not mutate the returned slice; use SetGlyphOrder instead.
func (f *Font) GlyphOrder() []string {
	return f.glyphOrder
}

// SetGlyphOrder renumbers the glyph-index space of the font. Tables in this
// model are keyed by glyph name, so changing the order is the complete
// renumbering operation.
func (f *Font) SetGlyphOrder(order []string) {
	f.glyphOrder = order
	if maxp := f.Maxp(); maxp != nil {
		maxp.NumGlyphs = uint16(len(order))
	}
}

// GlyphName returns the name for a glyph index, or "" if out of range.
func (f *Font) GlyphName(gid GlyphIndex) string {
	if int(gid) >= len(f.glyphOrder) {
		return ""
	}
	return f.glyphOrder[gid]
}

// IsVariable is true if the font carries a variation-axis table.
func (f *Font) IsVariable() bool {
	return f.Has(TagFvar)
}

// Adopt replaces the complete content of f with the content of other.
// The COLR repair path may produce a rebuilt font from an external tool;
// Adopt folds it back into the handle the caller owns.
func (f *Font) Adopt(other *Font) {
	if other == nil || other == f {
		return
	}
	tracer().Debugf("font %s adopts content of %s", f.Fontname, other.Fontname)
	f.tables = other.tables
	f.glyphOrder = other.glyphOrder
}

// --- Table -----------------------------------------------------------------

// Table is one of the various OpenType font tables.
// Typed tables are modelled as structs in this package; tables without a
// semantic model travel as RawTable.
type Table interface {
	Tag() Tag // 4-letter table tag, e.g. T("OS/2")
}

// tableBase is a common parent for all kinds of OpenType tables.
type tableBase struct {
	tag Tag
}

func (tb tableBase) Tag() Tag {
	return tb.tag
}

// RawTable is a table this package does not interpret. It preserves the
// presence of the table in the font.
type RawTable struct {
	tableBase
}

// NewRawTable creates an uninterpreted table for a tag.
func NewRawTable(tag Tag) *RawTable {
	return &RawTable{tableBase{tag}}
}

// Well-known table tags used throughout this module.
var (
	TagHead = T("head")
	TagOS2  = T("OS/2")
	TagHhea = T("hhea")
	TagMaxp = T("maxp")
	TagPost = T("post")
	TagName = T("name")
	TagCmap = T("cmap")
	TagHmtx = T("hmtx")
	TagGlyf = T("glyf")
	TagFvar = T("fvar")
	TagGasp = T("gasp")
	TagPrep = T("prep")
	TagFpgm = T("fpgm")
	TagDSIG = T("DSIG")
	TagHVAR = T("HVAR")
	TagCOLR = T("COLR")
	TagSVG  = T("SVG ")
	TagSTAT = T("STAT")
)

// --- Typed accessors -------------------------------------------------------

// Each accessor returns the semantically typed table, or nil if the font
// does not contain the table (or contains it as an uninterpreted raw table).

func (f *Font) Head() *Head {
	t, _ := f.Table(TagHead).(*Head)
	return t
}

func (f *Font) OS2() *OS2 {
	t, _ := f.Table(TagOS2).(*OS2)
	return t
}

func (f *Font) Hhea() *Hhea {
	t, _ := f.Table(TagHhea).(*Hhea)
	return t
}

func (f *Font) Maxp() *Maxp {
	t, _ := f.Table(TagMaxp).(*Maxp)
	return t
}

func (f *Font) Post() *Post {
	t, _ := f.Table(TagPost).(*Post)
	return t
}

func (f *Font) Name() *Name {
	t, _ := f.Table(TagName).(*Name)
	return t
}

func (f *Font) Cmap() *Cmap {
	t, _ := f.Table(TagCmap).(*Cmap)
	return t
}

func (f *Font) Hmtx() *Hmtx {
	t, _ := f.Table(TagHmtx).(*Hmtx)
	return t
}

func (f *Font) Glyf() *Glyf {
	t, _ := f.Table(TagGlyf).(*Glyf)
	return t
}

func (f *Font) Fvar() *Fvar {
	t, _ := f.Table(TagFvar).(*Fvar)
	return t
}

func (f *Font) Colr() *Colr {
	t, _ := f.Table(TagCOLR).(*Colr)
	return t
}

func (f *Font) Hvar() *Hvar {
	t, _ := f.Table(TagHVAR).(*Hvar)
	return t
}

func (f *Font) Gasp() *Gasp {
	t, _ := f.Table(TagGasp).(*Gasp)
	return t
}
