package fix

import (
	"github.com/npillmayer/fontfix/core"
	"github.com/npillmayer/fontfix/ot"
)

// Vertical-metrics harmonization. After FixVerticalMetrics ran over a
// family, every member reports byte-identical values for the eight
// vertical-metric fields, the hhea metrics mirror the typographic ones,
// and the win metrics bound the union of all glyph extents.

// VerticalMetrics is the eight-field vertical-metrics set of a font.
type VerticalMetrics struct {
	TypoAscender  int16
	TypoDescender int16
	TypoLineGap   int16
	WinAscent     uint16
	WinDescent    uint16
	HheaAscent    int16
	HheaDescent   int16
	HheaLineGap   int16
}

// metricsOf reads the vertical-metrics set of a font. It is an error if the
// font lacks the OS/2 or hhea table.
func metricsOf(f *ot.Font) (VerticalMetrics, error) {
	os2, hhea := f.OS2(), f.Hhea()
	if os2 == nil {
		return VerticalMetrics{}, missingTable(f, ot.TagOS2)
	}
	if hhea == nil {
		return VerticalMetrics{}, missingTable(f, ot.TagHhea)
	}
	return VerticalMetrics{
		TypoAscender:  os2.TypoAscender,
		TypoDescender: os2.TypoDescender,
		TypoLineGap:   os2.TypoLineGap,
		WinAscent:     os2.WinAscent,
		WinDescent:    os2.WinDescent,
		HheaAscent:    hhea.Ascent,
		HheaDescent:   hhea.Descent,
		HheaLineGap:   hhea.LineGap,
	}, nil
}

func (vm VerticalMetrics) applyTo(f *ot.Font) {
	os2, hhea := f.OS2(), f.Hhea()
	os2.TypoAscender = vm.TypoAscender
	os2.TypoDescender = vm.TypoDescender
	os2.TypoLineGap = vm.TypoLineGap
	os2.WinAscent = vm.WinAscent
	os2.WinDescent = vm.WinDescent
	hhea.Ascent = vm.HheaAscent
	hhea.Descent = vm.HheaDescent
	hhea.LineGap = vm.HheaLineGap
}

// FamilyBoundingBox computes the union of the vertical glyph extents of
// every font in the family, from the head tables' yMin/yMax.
func FamilyBoundingBox(fonts []*ot.Font) (yMin, yMax int16, err error) {
	if len(fonts) == 0 {
		return 0, 0, core.Error(core.EINVALID, "family is empty")
	}
	for i, f := range fonts {
		head := f.Head()
		if head == nil {
			return 0, 0, missingTable(f, ot.TagHead)
		}
		if i == 0 || head.YMin < yMin {
			yMin = head.YMin
		}
		if i == 0 || head.YMax > yMax {
			yMax = head.YMax
		}
	}
	return yMin, yMax, nil
}

// metricsSourceFont selects the family's source of truth for vertical
// metrics: the font styled "Regular", or the first font as fallback anchor.
func metricsSourceFont(fonts []*ot.Font) *ot.Font {
	for _, f := range fonts {
		if f.StyleName() == "Regular" {
			return f
		}
	}
	return fonts[0]
}

// FixVerticalMetrics harmonizes the vertical metrics of a family.
//
// The source font migrates to typographic metrics once if it still uses
// legacy metrics: bit 7 is enabled and the typo fields are seeded from the
// current win metrics (descender negated, zero line gap). The hhea metrics
// then mirror the typo metrics unconditionally, the win metrics are widened
// to the family bounding box, and the complete metrics set is copied onto
// every font of the family, with bit 7 force-enabled family-wide.
func FixVerticalMetrics(fonts []*ot.Font) (Result, error) {
	if len(fonts) == 0 {
		return Result{}, core.Error(core.EINVALID, "family is empty")
	}
	before := make([]VerticalMetrics, len(fonts))
	selections := make([]uint16, len(fonts))
	for i, f := range fonts {
		vm, err := metricsOf(f)
		if err != nil {
			return Result{}, err
		}
		before[i] = vm
		selections[i] = f.OS2().FsSelection
	}

	src := metricsSourceFont(fonts)
	srcOS2 := src.OS2()
	var res Result
	if !srcOS2.UseTypoMetrics() {
		srcOS2.FsSelection |= ot.FsSelUseTypoMetrics
		srcOS2.TypoAscender = int16(srcOS2.WinAscent)
		srcOS2.TypoDescender = -int16(srcOS2.WinDescent)
		srcOS2.TypoLineGap = 0
		res.logf("Migrated %s from legacy to typographic metrics", src.Fontname)
	}

	srcHhea := src.Hhea()
	srcHhea.Ascent = srcOS2.TypoAscender
	srcHhea.Descent = srcOS2.TypoDescender
	srcHhea.LineGap = srcOS2.TypoLineGap

	yMin, yMax, err := FamilyBoundingBox(fonts)
	if err != nil {
		return Result{}, err
	}
	srcOS2.WinAscent = uint16(yMax)
	if yMin < 0 {
		srcOS2.WinDescent = uint16(-yMin)
	} else {
		srcOS2.WinDescent = uint16(yMin)
	}

	vm, err := metricsOf(src)
	if err != nil {
		return Result{}, err
	}
	for i, f := range fonts {
		f.OS2().FsSelection |= ot.FsSelUseTypoMetrics
		vm.applyTo(f)
		if before[i] != vm || selections[i] != f.OS2().FsSelection {
			res.Changed = true
			res.logf("Set vertical metrics of %s to the family metrics", f.Fontname)
		}
	}
	return res, nil
}

// InheritVerticalMetrics copies vertical metrics from the already-released
// version of the family in the reference catalog. Each font inherits from
// the catalog font with the matching style name, falling back to the first
// catalog font.
func InheritVerticalMetrics(fonts []*ot.Font, catalog Catalog, familyName string) (Result, error) {
	if familyName == "" {
		familyName = fonts[0].FamilyName()
	}
	released, err := catalog.DownloadFamily(familyName)
	if err != nil {
		return Result{}, err
	}
	if len(released) == 0 {
		return Result{}, core.WrapError(ErrFamilyNotFound, core.EMISSING,
			"reference catalog returned no fonts for %q", familyName)
	}
	byStyle := make(map[string]*ot.Font, len(released))
	for _, rf := range released {
		byStyle[rf.StyleName()] = rf
	}

	var res Result
	for _, f := range fonts {
		src, ok := byStyle[f.StyleName()]
		if !ok {
			src = released[0]
			res.logf("No released %q style, inheriting metrics from %q",
				f.StyleName(), src.StyleName())
		}
		vm, err := metricsOf(src)
		if err != nil {
			return Result{}, err
		}
		current, err := metricsOf(f)
		if err != nil {
			return Result{}, err
		}
		if current != vm {
			vm.applyTo(f)
			res.Changed = true
			res.logf("Inherited vertical metrics of %s from the released family", f.Fontname)
		}
		if src.OS2().UseTypoMetrics() && !f.OS2().UseTypoMetrics() {
			f.OS2().FsSelection |= ot.FsSelUseTypoMetrics
			res.Changed = true
		}
	}
	return res, nil
}
