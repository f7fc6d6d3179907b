package ot

import "sort"

// The cmap table maps code-points to glyphs. A font usually carries several
// subtables for different platform/encoding combinations; for metadata
// normalization we keep all of them, decoded to rune→glyph-name mappings.
// https://docs.microsoft.com/en-us/typography/opentype/spec/cmap

// CmapSubtable is one platform/encoding-specific character mapping.
type CmapSubtable struct {
	Format     uint16
	PlatformID uint16
	EncodingID uint16
	Language   uint32
	Mapping    map[rune]string
}

// IsUnicode reports whether the subtable maps from Unicode code-points.
func (st *CmapSubtable) IsUnicode() bool {
	return st.PlatformID == PlatformUnicode ||
		(st.PlatformID == PlatformWindows && (st.EncodingID == 1 || st.EncodingID == 10))
}

// Cmap is the character-to-glyph mapping table.
type Cmap struct {
	tableBase
	Subtables []*CmapSubtable
}

func NewCmap() *Cmap {
	return &Cmap{tableBase: tableBase{TagCmap}}
}

// Subtable returns the first subtable with the given platform and encoding
// IDs, or nil.
func (t *Cmap) Subtable(platformID, encodingID uint16) *CmapSubtable {
	for _, st := range t.Subtables {
		if st.PlatformID == platformID && st.EncodingID == encodingID {
			return st
		}
	}
	return nil
}

// ucs2Preference is the platform/encoding lookup order for a UCS-2 subtable,
// most portable combination first.
var ucs2Preference = [][2]uint16{{3, 1}, {0, 3}, {3, 0}}

// UCS2Subtable returns the best UCS-2 ("BMP") subtable of the font, or nil.
func (t *Cmap) UCS2Subtable() *CmapSubtable {
	for _, pe := range ucs2Preference {
		if st := t.Subtable(pe[0], pe[1]); st != nil {
			return st
		}
	}
	return nil
}

// UCS4Subtable returns the Windows UCS-4 subtable (platform 3, encoding 10),
// or nil.
func (t *Cmap) UCS4Subtable() *CmapSubtable {
	return t.Subtable(3, 10)
}

// GlyphFor resolves a code-point to a glyph name, consulting the UCS-4
// subtable first, then the UCS-2 preference order, then any remaining
// Unicode subtable. ok is false if no subtable maps the rune.
func (t *Cmap) GlyphFor(r rune) (string, bool) {
	if st := t.UCS4Subtable(); st != nil {
		if g, ok := st.Mapping[r]; ok {
			return g, true
		}
	}
	if st := t.UCS2Subtable(); st != nil {
		if g, ok := st.Mapping[r]; ok {
			return g, true
		}
	}
	for _, st := range t.Subtables {
		if !st.IsUnicode() {
			continue
		}
		if g, ok := st.Mapping[r]; ok {
			return g, true
		}
	}
	return "", false
}

// EncodedGlyphs returns the set of glyph names reachable through any
// subtable of the cmap.
func (t *Cmap) EncodedGlyphs() map[string]bool {
	encoded := make(map[string]bool)
	for _, st := range t.Subtables {
		for _, g := range st.Mapping {
			encoded[g] = true
		}
	}
	return encoded
}

// Partition splits the subtables of the cmap into those for which keep is
// true and the rest. The cmap is left with the kept subtables; the dropped
// ones are returned for reporting.
func (t *Cmap) Partition(keep func(*CmapSubtable) bool) (kept, dropped []*CmapSubtable) {
	for _, st := range t.Subtables {
		if keep(st) {
			kept = append(kept, st)
		} else {
			tracer().Debugf("cmap partition drops subtable (%d, %d, format %d)",
				st.PlatformID, st.EncodingID, st.Format)
			dropped = append(dropped, st)
		}
	}
	t.Subtables = kept
	return kept, dropped
}

// CodePoints returns the sorted code-points of a subtable.
func (st *CmapSubtable) CodePoints() []rune {
	runes := make([]rune, 0, len(st.Mapping))
	for r := range st.Mapping {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return runes
}

// CloneMapping returns a copy of the subtable's rune→glyph mapping.
func (st *CmapSubtable) CloneMapping() map[rune]string {
	m := make(map[rune]string, len(st.Mapping))
	for r, g := range st.Mapping {
		m[r] = g
	}
	return m
}
