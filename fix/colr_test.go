package fix

import (
	"testing"

	"github.com/npillmayer/fontfix/core"
	"github.com/npillmayer/fontfix/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Preparation ------------------------------------------------

type ColrTestEnviron struct {
	suite.Suite
}

// listen for 'go test' command --> run test methods
func TestColrFixing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfix.fix")
	defer teardown()
	suite.Run(t, new(ColrTestEnviron))
}

func buildColrFont(version uint16) *ot.Font {
	f := buildFont("TestColor", "Regular")
	f.SetTable(ot.NewColr(version))
	return f
}

// --- Tests -----------------------------------------------------------------

func (env *ColrTestEnviron) TestV0AlreadyCompliant() {
	f := buildColrFont(0)
	f.Glyf().Glyphs["A"] = &ot.Glyph{} // glyph index 1 is already empty
	res, err := NewColrFixer(nil).Fix(f)
	env.Require().NoError(err)
	env.False(res.Changed)
}

func (env *ColrTestEnviron) TestV0MovesEmptyGlyph() {
	f := buildColrFont(0)
	f.Glyf().Glyphs["Z"] = &ot.Glyph{}
	numGlyphs := f.Maxp().NumGlyphs

	res, err := NewColrFixer(nil).Fix(f)
	env.Require().NoError(err)
	env.True(res.Changed)
	env.Equal("Z", f.GlyphName(1), "the empty glyph must move to glyph index 1")
	env.Equal("A", f.GlyphName(2))
	env.Equal(numGlyphs, f.Maxp().NumGlyphs, "renumbering adds no glyphs")

	res, err = NewColrFixer(nil).Fix(f)
	env.Require().NoError(err)
	env.False(res.Changed, "second application must be a no-op")
}

func (env *ColrTestEnviron) TestV0SynthesizesEmptyGlyph() {
	f := buildColrFont(0)
	hvar := ot.NewHvar()
	hvar.AdvWidthMap = map[string]uint32{"A": 3}
	f.SetTable(hvar)
	numGlyphs := f.Maxp().NumGlyphs

	res, err := NewColrFixer(nil).Fix(f)
	env.Require().NoError(err)
	env.True(res.Changed)
	env.Equal(".null", f.GlyphName(1))
	env.Equal(numGlyphs+1, f.Maxp().NumGlyphs)
	env.Equal(ot.Metric{}, f.Hmtx().Metrics[".null"], "empty glyph has zero metrics")
	env.EqualValues(ot.NoVariationIndex, hvar.AdvWidthMap[".null"],
		"the empty glyph must not vary")
}

func (env *ColrTestEnviron) TestV0TinyFontIsLeftAlone() {
	f := ot.NewFont("TestColor-Tiny")
	f.SetTable(ot.NewColr(0))
	maxp := ot.NewMaxp()
	f.SetTable(maxp)
	f.SetTable(ot.NewGlyf())
	f.SetGlyphOrder([]string{".notdef"})
	res, err := NewColrFixer(nil).Fix(f)
	env.Require().NoError(err)
	env.False(res.Changed)
}

func (env *ColrTestEnviron) TestV1AddsScalableGraphics() {
	f := buildColrFont(1)
	fixer := &ColrFixer{Rasterizer: fakeRasterizer{}, Reorderer: orderReorderer{}}
	res, err := fixer.Fix(f)
	env.Require().NoError(err)
	env.True(res.Changed)
	env.True(f.Has(ot.TagSVG))
	env.Equal("TestColor-Regular", f.Fontname, "identity stays with the handle")

	res, err = fixer.Fix(f)
	env.Require().NoError(err)
	env.False(res.Changed, "font already carries an SVG table")
}

func (env *ColrTestEnviron) TestV1RasterizerOutputWithoutSVGFatal() {
	f := buildColrFont(1)
	fixer := &ColrFixer{Rasterizer: fakeRasterizer{omitSVG: true}, Reorderer: orderReorderer{}}
	_, err := fixer.Fix(f)
	env.Require().Error(err)
	env.Equal(core.EINVALID, core.Code(err))
}

func (env *ColrTestEnviron) TestV1WithoutRasterizerFatal() {
	f := buildColrFont(1)
	_, err := NewColrFixer(nil).Fix(f)
	env.Require().Error(err)
	env.Equal(core.EMISSING, core.Code(err))
}

func (env *ColrTestEnviron) TestUnsupportedVersionFatal() {
	f := buildColrFont(2)
	_, err := NewColrFixer(nil).Fix(f)
	env.Require().Error(err)
	env.Equal(core.EUNSUPPORTED, core.Code(err))
}
