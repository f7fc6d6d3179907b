package fix

import (
	"github.com/npillmayer/fontfix/core"
	"github.com/npillmayer/fontfix/ot"
)

// ColrFixer repairs color fonts. For COLR v0 fonts the glyph at index 1
// must be an empty glyph, a constraint some rasterizers rely on. COLR v1
// fonts are handed to a rasterization tool which adds a scalable-graphics
// table for applications without COLRv1 support. Both collaborators are
// injected so the fixer can run against fakes.
type ColrFixer struct {
	Rasterizer Rasterizer
	Reorderer  GlyphReorderer
}

// NewColrFixer creates a fixer with the default in-model glyph reorderer.
// rasterizer may be nil if no COLR v1 fonts are expected.
func NewColrFixer(rasterizer Rasterizer) *ColrFixer {
	return &ColrFixer{
		Rasterizer: rasterizer,
		Reorderer:  orderReorderer{},
	}
}

// Fix dispatches on the COLR table version. Versions other than 0 and 1 are
// unsupported and fatal.
func (cf *ColrFixer) Fix(f *ot.Font) (Result, error) {
	colr := f.Colr()
	if colr == nil {
		return Result{}, missingTable(f, ot.TagCOLR)
	}
	switch colr.Version {
	case 0:
		return cf.fixV0GID1(f)
	case 1:
		return cf.fixV1AddSVG(f)
	}
	return Result{}, core.Error(core.EUNSUPPORTED,
		"COLR version %d of %s is not supported", colr.Version, f.Fontname)
}

// fixV0GID1 ensures that glyph index 1 of a COLR v0 font holds an empty
// glyph. An existing empty glyph is moved there by renumbering the glyph ID
// space; otherwise a fresh empty glyph with zero-advance metrics is
// synthesized at index 1.
func (cf *ColrFixer) fixV0GID1(f *ot.Font) (Result, error) {
	maxp := f.Maxp()
	if maxp == nil {
		return Result{}, missingTable(f, ot.TagMaxp)
	}
	if maxp.NumGlyphs < 2 {
		return Result{}, nil
	}
	glyf := f.Glyf()
	if glyf == nil {
		return Result{}, missingTable(f, ot.TagGlyf)
	}
	order := f.GlyphOrder()
	if len(order) < 2 {
		return Result{}, core.Error(core.EINVALID,
			"glyph order of %s disagrees with maxp.numGlyphs", f.Fontname)
	}
	if glyf.Glyphs[order[1]].IsEmpty() {
		return Result{}, nil
	}
	for _, g := range order {
		if glyf.Glyphs[g].IsEmpty() {
			return cf.swapEmptyGlyphToGID1(f)
		}
	}
	return cf.addEmptyGlyphAtGID1(f)
}

func (cf *ColrFixer) swapEmptyGlyphToGID1(f *ot.Font) (Result, error) {
	glyf := f.Glyf()
	empty := ""
	for _, g := range f.GlyphOrder() {
		if glyf.Glyphs[g].IsEmpty() {
			empty = g
			break
		}
	}
	if empty == "" {
		return Result{}, core.Error(core.EMISSING,
			"%s contains no empty glyphs; please include a space or .null glyph", f.Fontname)
	}
	order := make([]string, 0, len(f.GlyphOrder()))
	for _, g := range f.GlyphOrder() {
		if g != empty {
			order = append(order, g)
		}
	}
	order = append(order[:1], append([]string{empty}, order[1:]...)...)
	if err := cf.Reorderer.Reorder(f, order); err != nil {
		return Result{}, err
	}
	return changed("Moved empty glyph %q to glyph index 1", empty), nil
}

func (cf *ColrFixer) addEmptyGlyphAtGID1(f *ot.Font) (Result, error) {
	glyf, hmtx := f.Glyf(), f.Hmtx()
	if hmtx == nil {
		return Result{}, missingTable(f, ot.TagHmtx)
	}
	name := ".null"
	if _, taken := glyf.Glyphs[name]; taken {
		name = "emptyglyph"
	}
	if _, taken := glyf.Glyphs[name]; taken {
		return Result{}, core.Error(core.EINVALID,
			"%s already contains a glyph named %q", f.Fontname, name)
	}
	glyf.Glyphs[name] = &ot.Glyph{}
	hmtx.Metrics[name] = ot.Metric{}
	if hvar := f.Hvar(); hvar != nil {
		if hvar.AdvWidthMap != nil {
			hvar.AdvWidthMap[name] = ot.NoVariationIndex
		}
		if hvar.LsbMap != nil {
			hvar.LsbMap[name] = ot.NoVariationIndex
		}
		if hvar.RsbMap != nil {
			hvar.RsbMap[name] = ot.NoVariationIndex
		}
	}
	old := f.GlyphOrder()
	order := make([]string, 0, len(old)+1)
	order = append(order, old[0], name)
	order = append(order, old[1:]...)
	if err := cf.Reorderer.Reorder(f, order); err != nil {
		return Result{}, err
	}
	return changed("Inserted empty glyph %q at glyph index 1", name), nil
}

// fixV1AddSVG regenerates the font through the rasterization tool so it
// carries an "SVG " table. The tool not producing that table is fatal.
func (cf *ColrFixer) fixV1AddSVG(f *ot.Font) (Result, error) {
	if f.Has(ot.TagSVG) {
		return Result{}, nil
	}
	if cf.Rasterizer == nil {
		return Result{}, core.Error(core.EMISSING,
			"no rasterizer configured for COLR v1 font %s", f.Fontname)
	}
	fixed, err := cf.Rasterizer.AddScalableGraphics(f)
	if err != nil {
		return Result{}, core.WrapError(err, core.ECONNECTION,
			"rasterization of %s failed", f.Fontname)
	}
	if fixed == nil || !fixed.Has(ot.TagSVG) {
		return Result{}, core.Error(core.EINVALID,
			"rasterizer output for %s is missing the SVG table", f.Fontname)
	}
	f.Adopt(fixed)
	return changed("Regenerated %s with a scalable-graphics table", f.Fontname), nil
}
