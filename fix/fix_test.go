package fix

// Shared test fixtures: programmatically built fonts and fake services.
// The table model is in-memory, so no font files are needed.

import (
	"fmt"

	"github.com/npillmayer/fontfix/ot"
)

// buildFont creates a complete static test font with glyphs for A–Z, all
// with advance width 600, mapped through a Windows UCS-2 cmap subtable.
func buildFont(family, style string) *ot.Font {
	f := ot.NewFont(fmt.Sprintf("%s-%s", family, style))

	name := ot.NewName()
	name.Set(ot.NameIDFamily, ot.PlatformWindows, 1, ot.LanguageWindowsEnUS, family)
	name.Set(ot.NameIDSubfamily, ot.PlatformWindows, 1, ot.LanguageWindowsEnUS, style)
	name.Set(ot.NameIDFamily, ot.PlatformMacintosh, 0, 0, family)
	name.Set(ot.NameIDSubfamily, ot.PlatformMacintosh, 0, 0, style)
	f.SetTable(name)

	head := ot.NewHead()
	head.UnitsPerEm = 1000
	head.YMin = -200
	head.YMax = 800
	f.SetTable(head)

	os2 := ot.NewOS2()
	os2.Version = 4
	os2.UsWeightClass = 400
	os2.WinAscent = 900
	os2.WinDescent = 250
	os2.TypoAscender = 800
	os2.TypoDescender = -200
	f.SetTable(os2)

	hhea := ot.NewHhea()
	hhea.Ascent = 800
	hhea.Descent = -200
	f.SetTable(hhea)

	f.SetTable(ot.NewPost())

	glyf := ot.NewGlyf()
	hmtx := ot.NewHmtx()
	mapping := make(map[rune]string)
	order := []string{".notdef"}
	glyf.Glyphs[".notdef"] = &ot.Glyph{Contours: 1, YMin: 0, YMax: 700}
	hmtx.Metrics[".notdef"] = ot.Metric{Advance: 500}
	for c := 'A'; c <= 'Z'; c++ {
		g := string(c)
		order = append(order, g)
		glyf.Glyphs[g] = &ot.Glyph{Contours: 2, YMin: -200, YMax: 700}
		hmtx.Metrics[g] = ot.Metric{Advance: 600}
		mapping[c] = g
	}
	f.SetTable(glyf)
	f.SetTable(hmtx)

	cmap := ot.NewCmap()
	cmap.Subtables = append(cmap.Subtables, &ot.CmapSubtable{
		Format:     4,
		PlatformID: ot.PlatformWindows,
		EncodingID: 1,
		Mapping:    mapping,
	})
	f.SetTable(cmap)

	maxp := ot.NewMaxp()
	f.SetTable(maxp)
	f.SetGlyphOrder(order)
	return f
}

// makeVariable turns a test font into a variable font with a wght axis.
func makeVariable(f *ot.Font, wghtDefault float64) {
	fvar := ot.NewFvar()
	fvar.Axes = append(fvar.Axes, ot.VariationAxis{
		Tag: "wght", Minimum: 100, Default: wghtDefault, Maximum: 900, NameID: 256,
	})
	f.SetTable(fvar)
}

// --- Fakes -----------------------------------------------------------------

// fakeNaming rebuilds names deterministically from family and style.
type fakeNaming struct {
	nameTableCalls int
	instanceCalls  int
	psNameCalls    int
}

func (fn *fakeNaming) BuildNameTable(f *ot.Font, familyName string) error {
	fn.nameTableCalls++
	name := f.Name()
	if familyName == "" {
		familyName = name.BestFamilyName()
	}
	style := name.BestSubfamilyName()
	name.Set(ot.NameIDFamily, ot.PlatformWindows, 1, ot.LanguageWindowsEnUS, familyName)
	name.Set(ot.NameIDFullName, ot.PlatformWindows, 1, ot.LanguageWindowsEnUS,
		familyName+" "+style)
	return nil
}

func (fn *fakeNaming) BuildFvarInstances(f *ot.Font, axisDefaults map[string]float64) error {
	fn.instanceCalls++
	name := f.Name()
	name.Set(300, ot.PlatformWindows, 1, ot.LanguageWindowsEnUS, "Regular")
	name.Set(301, ot.PlatformWindows, 1, ot.LanguageWindowsEnUS, "Bold")
	f.Fvar().Instances = []ot.NamedInstance{
		{SubfamilyNameID: 300, Coordinates: map[string]float64{"wght": 400}},
		{SubfamilyNameID: 301, Coordinates: map[string]float64{"wght": 700}},
	}
	return nil
}

func (fn *fakeNaming) BuildVariationsPSName(f *ot.Font) error {
	fn.psNameCalls++
	family := f.FamilyName()
	f.Name().Set(ot.NameIDVariationsPSNamePrefix,
		ot.PlatformWindows, 1, ot.LanguageWindowsEnUS, family)
	return nil
}

func (fn *fakeNaming) BuildFilename(f *ot.Font) string {
	return f.Fontname + ".ttf"
}

// fakeCatalog serves a fixed released family, or fails with err.
type fakeCatalog struct {
	family string
	fonts  []*ot.Font
	err    error
}

func (fc *fakeCatalog) HasFamily(name string) (bool, error) {
	if fc.err != nil {
		return false, fc.err
	}
	return name == fc.family, nil
}

func (fc *fakeCatalog) DownloadFamily(name string) ([]*ot.Font, error) {
	if fc.err != nil {
		return nil, fc.err
	}
	if name != fc.family {
		return nil, ErrFamilyNotFound
	}
	return fc.fonts, nil
}

// fakeStats marks each font with a raw STAT table.
type fakeStats struct {
	axisOrder []string
}

func (fs *fakeStats) GenerateStatTables(fonts []*ot.Font, axisOrder []string) error {
	fs.axisOrder = axisOrder
	for _, f := range fonts {
		f.SetTable(ot.NewRawTable(ot.TagSTAT))
	}
	return nil
}

// fakeRasterizer returns a rebuilt font, optionally without the SVG table
// to exercise the fatal path.
type fakeRasterizer struct {
	omitSVG bool
}

func (fr fakeRasterizer) AddScalableGraphics(f *ot.Font) (*ot.Font, error) {
	rebuilt := ot.NewFont(f.Fontname + ".rebuilt")
	for _, tag := range f.TableTags() {
		rebuilt.SetTable(f.Table(tag))
	}
	rebuilt.SetGlyphOrder(f.GlyphOrder())
	if !fr.omitSVG {
		rebuilt.SetTable(ot.NewSvg())
	}
	return rebuilt, nil
}

// memSaver records save calls.
type memSaver struct {
	saved []string
}

func (ms *memSaver) Save(f *ot.Font) error {
	ms.saved = append(ms.saved, f.Fontname)
	return nil
}
