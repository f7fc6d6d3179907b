package fix

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"fortio.org/safecast"
	"github.com/npillmayer/fontfix/core"
	"github.com/npillmayer/fontfix/ot"
)

// --- Rule results ----------------------------------------------------------

// Result is the uniform outcome of a fix rule: whether the rule mutated the
// font, plus human-readable diagnostics. Messages are informational only and
// never alter control flow.
type Result struct {
	Changed  bool
	Messages []string
}

func changed(format string, v ...interface{}) Result {
	return Result{Changed: true, Messages: []string{fmt.Sprintf(format, v...)}}
}

func unchanged(msgs ...string) Result {
	return Result{Messages: msgs}
}

// merge folds another result into r.
func (r Result) merge(other Result) Result {
	return Result{
		Changed:  r.Changed || other.Changed,
		Messages: append(r.Messages, other.Messages...),
	}
}

func (r *Result) logf(format string, v ...interface{}) {
	r.Messages = append(r.Messages, fmt.Sprintf(format, v...))
}

// Rule is one named, order-sensitive mutation of a single font.
// Rules are idempotent: applying a rule twice reports Changed=false the
// second time. A non-nil error is fatal for the font being fixed.
type Rule struct {
	Name  string
	Apply func(f *ot.Font) (Result, error)
}

// --- Helpers ---------------------------------------------------------------

// styleName returns the style name of a font, or a fatal error if the font
// carries no subfamily name record.
func styleName(f *ot.Font) (string, error) {
	if s := f.StyleName(); s != "" {
		return s, nil
	}
	return "", core.Error(core.EMISSING,
		"font %s has no subfamily record in its name table", f.Fontname)
}

func styleTokens(style string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(style) {
		tokens[tok] = true
	}
	return tokens
}

func missingTable(f *ot.Font, tag ot.Tag) error {
	return core.Error(core.EMISSING, "font %s has no %s table", f.Fontname, tag)
}

// otRound rounds a font-unit value half away from zero towards positive
// infinity, matching OpenType's value rounding.
func otRound(x float64) int {
	return int(math.Floor(x + 0.5))
}

// --- Table pruning ---------------------------------------------------------

// RemoveTables removes unwanted tables from a font. Only tables belonging
// to the profile's unwanted set are ever removed; removal requests outside
// that set are refused, and requests for absent tables are skipped.
// If no tags are given, the complete unwanted set is the removal request.
func RemoveTables(f *ot.Font, p Profile, tags ...ot.Tag) Result {
	unwanted := p.unwantedSet()
	request := make(map[ot.Tag]bool)
	if len(tags) == 0 {
		for tag := range unwanted {
			request[tag] = true
		}
	} else {
		for _, tag := range tags {
			request[tag] = true
		}
	}

	var res Result
	var toRemove []ot.Tag
	for tag := range request {
		switch {
		case !unwanted[tag]:
			res.logf("Cannot remove table %s: it is required", tag)
		case !f.Has(tag):
			tracer().Debugf("table %s not in font, nothing to remove", tag)
		default:
			toRemove = append(toRemove, tag)
		}
	}
	if len(toRemove) == 0 {
		return res
	}
	sort.Slice(toRemove, func(i, j int) bool { return toRemove[i] < toRemove[j] })
	for _, tag := range toRemove {
		f.DeleteTable(tag)
	}
	res.Changed = true
	res.logf("Removed tables %v from font", toRemove)
	return res
}

// --- Hinting bootstrap -----------------------------------------------------

// prepAssembly enables scan-conversion control for unhinted fonts: dropout
// control below 512 ppem, smart scan type 4.
var prepAssembly = []string{"PUSHW[]", "511", "SCANCTRL[]", "PUSHB[]", "4", "SCANTYPE[]"}

// FixUnhintedFont improves the appearance of an unhinted font on Windows by
// installing a gasp table with a single all-sizes-smooth range and a minimal
// prep program. Fonts carrying a hint program are left alone.
func FixUnhintedFont(f *ot.Font) Result {
	if f.Has(ot.TagFpgm) {
		return unchanged("Skipping hinting bootstrap: font has a hint program")
	}
	var res Result
	gasp := f.Gasp()
	smooth := ot.GaspDoGray | ot.GaspGridFit | ot.GaspSymmetricGridFit | ot.GaspSymmetricSmooth
	if gasp == nil || len(gasp.Ranges) != 1 || gasp.Ranges[0xFFFF] != smooth {
		ng := ot.NewGasp()
		ng.Ranges[0xFFFF] = smooth
		f.SetTable(ng)
		res.Changed = true
		res.logf("Set gasp table so all sizes render smooth")
	}
	prep, _ := f.Table(ot.TagPrep).(*ot.Prep)
	wanted := ot.Program{Assembly: prepAssembly}
	if prep == nil || !prep.Program.Equal(wanted) {
		np := ot.NewPrep()
		np.Program = wanted
		f.SetTable(np)
		res.Changed = true
		res.logf("Set prep table optimized for unhinted fonts")
	}
	return res
}

// FixHintedFont enables flag bit 3 of the head table (force ppem to
// integer), which improves rendering of hinted fonts on Windows.
func FixHintedFont(f *ot.Font) (Result, error) {
	if !f.Has(ot.TagFpgm) {
		return unchanged("Skipping: font is not hinted"), nil
	}
	head := f.Head()
	if head == nil {
		return Result{}, missingTable(f, ot.TagHead)
	}
	if head.Flags&ot.HeadFlagForcePPEMToInteger != 0 {
		return Result{}, nil
	}
	head.Flags |= ot.HeadFlagForcePPEMToInteger
	return changed("Enabled head table flag bit 3 (force ppem to integer)"), nil
}

// --- OS/2 flags ------------------------------------------------------------

// FixFsType sets the OS/2 embedding-restriction field to 0 (installable
// embedding).
func FixFsType(f *ot.Font) (Result, error) {
	os2 := f.OS2()
	if os2 == nil {
		return Result{}, missingTable(f, ot.TagOS2)
	}
	if os2.FsType == 0 {
		return Result{}, nil
	}
	os2.FsType = 0
	return changed("Set OS/2 fsType to 0 (installable embedding)"), nil
}

// FixWeightClass sets the OS/2 usWeightClass. For a variable font with a
// wght axis the axis default wins, integer-truncated. Otherwise the weight
// is inferred from the style name; a style with no known weight token and
// no Italic token is a fatal classification error.
func FixWeightClass(f *ot.Font) (Result, error) {
	os2 := f.OS2()
	if os2 == nil {
		return Result{}, missingTable(f, ot.TagOS2)
	}
	if fvar := f.Fvar(); fvar != nil {
		if axis := fvar.Axis("wght"); axis != nil {
			wc, err := safecast.Conv[uint16](int(axis.Default))
			if err != nil {
				return Result{}, core.WrapError(err, core.EINVALID,
					"wght axis default %v of %s is not a valid weight class",
					axis.Default, f.Fontname)
			}
			if os2.UsWeightClass == wc {
				return Result{}, nil
			}
			os2.UsWeightClass = wc
			return changed("Set OS/2 usWeightClass to wght axis default %d", wc), nil
		}
	}
	style, err := styleName(f)
	if err != nil {
		return Result{}, err
	}
	sc, err := Classify(style)
	if err != nil {
		return Result{}, err
	}
	wc := uint16(sc.WeightClass)
	if os2.UsWeightClass == wc {
		return Result{}, nil
	}
	os2.UsWeightClass = wc
	return changed("Set OS/2 usWeightClass to %d for style %q", wc, style), nil
}

// FixFsSelection recomputes the OS/2 fsSelection style bits from the style
// name. All bits except bit 7 (use typographic metrics) are cleared first;
// italic sets bit 0, bold bit 5, and any style that is neither sets the
// regular bit 6.
func FixFsSelection(f *ot.Font) (Result, error) {
	os2 := f.OS2()
	if os2 == nil {
		return Result{}, missingTable(f, ot.TagOS2)
	}
	style, err := styleName(f)
	if err != nil {
		return Result{}, err
	}
	tokens := styleTokens(style)
	selection := os2.FsSelection & ot.FsSelUseTypoMetrics
	if tokens["Italic"] {
		selection |= ot.FsSelItalic
	}
	if tokens["Bold"] {
		selection |= ot.FsSelBold
	}
	if !tokens["Bold"] && !tokens["Italic"] {
		selection |= ot.FsSelRegular
	}
	if selection == os2.FsSelection {
		return Result{}, nil
	}
	os2.FsSelection = selection
	return changed("Set OS/2 fsSelection to 0b%b", selection), nil
}

// FixMacStyle recomputes the 2-bit head macStyle field from the style name.
// The field is always overwritten, never merged.
func FixMacStyle(f *ot.Font) (Result, error) {
	head := f.Head()
	if head == nil {
		return Result{}, missingTable(f, ot.TagHead)
	}
	style, err := styleName(f)
	if err != nil {
		return Result{}, err
	}
	tokens := styleTokens(style)
	var macStyle uint16
	if tokens["Italic"] {
		macStyle |= ot.MacStyleItalic
	}
	if tokens["Bold"] {
		macStyle |= ot.MacStyleBold
	}
	if macStyle == head.MacStyle {
		return Result{}, nil
	}
	head.MacStyle = macStyle
	return changed("Set head macStyle to %d", macStyle), nil
}

// --- Name table ------------------------------------------------------------

// nameSnapshot captures one value per name ID for diffing.
func nameSnapshot(f *ot.Font) map[uint16]string {
	snap := make(map[uint16]string)
	if name := f.Name(); name != nil {
		for _, r := range name.Records {
			if _, ok := snap[r.NameID]; !ok {
				snap[r.NameID] = name.DebugName(r.NameID)
			}
		}
	}
	return snap
}

func diffNameSnapshots(res *Result, before, after map[uint16]string) bool {
	ids := make([]int, 0, len(before)+len(after))
	seen := make(map[uint16]bool)
	for id := range before {
		ids = append(ids, int(id))
		seen[id] = true
	}
	for id := range after {
		if !seen[id] {
			ids = append(ids, int(id))
		}
	}
	sort.Ints(ids)
	differs := false
	for _, i := range ids {
		id := uint16(i)
		oldName, hadOld := before[id]
		newName, hasNew := after[id]
		if hadOld && !hasNew {
			newName = "<removed>"
		}
		if oldName == newName {
			continue
		}
		differs = true
		if hadOld {
			res.logf("- %d: %s", id, oldName)
		}
		res.logf("+ %d: %s", id, newName)
	}
	return differs
}

// FixNameTable rebuilds the name table through the naming service and
// reports every changed record ID.
func FixNameTable(f *ot.Font, naming Naming) (Result, error) {
	if f.Name() == nil {
		return Result{}, missingTable(f, ot.TagName)
	}
	old := nameSnapshot(f)
	if err := naming.BuildNameTable(f, ""); err != nil {
		return Result{}, err
	}
	var res Result
	if diffNameSnapshots(&res, old, nameSnapshot(f)) {
		res.Changed = true
		res.logf("Name table entries changed; consider fixing the source instead")
	}
	return res, nil
}

// RenameFont rebuilds the name table with a new family name. It is fatal
// for fonts whose name table has neither a family (ID 1) nor a typographic
// family (ID 16) record.
func RenameFont(f *ot.Font, naming Naming, newName string) (Result, error) {
	if f.FamilyName() == "" {
		return Result{}, core.Error(core.EMISSING,
			"name table of %s contains neither nameID 1 nor nameID 16", f.Fontname)
	}
	old := nameSnapshot(f)
	if err := naming.BuildNameTable(f, newName); err != nil {
		return Result{}, err
	}
	var res Result
	if diffNameSnapshots(&res, old, nameSnapshot(f)) {
		res.Changed = true
		res.logf("Updated font name records for family %q", newName)
	}
	return res, nil
}

// --- fvar instances --------------------------------------------------------

func instanceCoordinates(f *ot.Font) map[string]map[string]float64 {
	insts := make(map[string]map[string]float64)
	fvar := f.Fvar()
	name := f.Name()
	if fvar == nil {
		return insts
	}
	for _, inst := range fvar.Instances {
		label := "<removed>"
		if name != nil {
			if s := name.DebugName(inst.SubfamilyNameID); s != "" {
				label = s
			}
		}
		insts[label] = inst.Coordinates
	}
	return insts
}

func coordinatesEqual(a, b map[string]map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for label, ca := range a {
		cb, ok := b[label]
		if !ok || len(ca) != len(cb) {
			return false
		}
		for axis, va := range ca {
			if vb, ok := cb[axis]; !ok || va != vb {
				return false
			}
		}
	}
	return true
}

func instanceLabels(insts map[string]map[string]float64) string {
	labels := make([]string, 0, len(insts))
	for label := range insts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return strings.Join(labels, ", ")
}

// FixFvarInstances replaces a variable font's named instances with the set
// the naming service derives from the axis registry. Invoking it on a
// non-variable font is fatal.
func FixFvarInstances(f *ot.Font, naming Naming, axisDefaults map[string]float64) (Result, error) {
	if !f.IsVariable() {
		return Result{}, core.Error(core.EMISSING, "%s is not a variable font", f.Fontname)
	}
	old := instanceCoordinates(f)
	if err := naming.BuildFvarInstances(f, axisDefaults); err != nil {
		return Result{}, err
	}
	updated := instanceCoordinates(f)
	if coordinatesEqual(old, updated) {
		return Result{}, nil
	}
	var res Result
	res.Changed = true
	res.logf("Set instances in fvar table to: %s", instanceLabels(updated))
	res.logf("(Old instances were: %s)", instanceLabels(old))
	res.logf("Consider fixing the export list in the source instead")
	return res, nil
}

// --- cmap fixes ------------------------------------------------------------

func dropSubtables(res *Result, dropped []*ot.CmapSubtable) {
	for _, st := range dropped {
		res.logf("Dropped cmap subtable (platform %d, encoding %d, format %d)",
			st.PlatformID, st.EncodingID, st.Format)
	}
	res.Changed = len(dropped) > 0
}

// DropNonPID0Cmap keeps only Unicode-platform cmap subtables.
func DropNonPID0Cmap(f *ot.Font) (Result, error) {
	cmap := f.Cmap()
	if cmap == nil {
		return Result{}, missingTable(f, ot.TagCmap)
	}
	var res Result
	_, dropped := cmap.Partition(func(st *ot.CmapSubtable) bool {
		return st.PlatformID == ot.PlatformUnicode
	})
	dropSubtables(&res, dropped)
	return res, nil
}

// DropMacCmap removes Macintosh-platform Roman cmap subtables.
func DropMacCmap(f *ot.Font) (Result, error) {
	cmap := f.Cmap()
	if cmap == nil {
		return Result{}, missingTable(f, ot.TagCmap)
	}
	var res Result
	_, dropped := cmap.Partition(func(st *ot.CmapSubtable) bool {
		return st.PlatformID != ot.PlatformMacintosh || st.EncodingID != 0
	})
	dropSubtables(&res, dropped)
	return res, nil
}

// ConvertCmapToFormat4 converts every cmap subtable to format 4, reporting
// the (format, platform, encoding) triples that needed conversion.
func ConvertCmapToFormat4(f *ot.Font) (Result, error) {
	cmap := f.Cmap()
	if cmap == nil {
		return Result{}, missingTable(f, ot.TagCmap)
	}
	var res Result
	for _, st := range cmap.Subtables {
		if st.Format == 4 {
			continue
		}
		res.logf("Converted cmap subtable (format %d, platform %d, encoding %d) to format 4",
			st.Format, st.PlatformID, st.EncodingID)
		st.Format = 4
		res.Changed = true
	}
	return res, nil
}

// unencodedGlyphs lists glyph names (in glyph order) that no cmap subtable
// currently reaches. Glyph index 0 is never counted; .notdef is unencoded
// by design. The set is recomputed from the live cmap on every call, so
// glyphs remapped by an earlier FixPUA run are encoded.
func unencodedGlyphs(f *ot.Font) []string {
	cmap := f.Cmap()
	if cmap == nil {
		return nil
	}
	encoded := cmap.EncodedGlyphs()
	var unencoded []string
	for gid, glyph := range f.GlyphOrder() {
		if gid == 0 {
			continue
		}
		if !encoded[glyph] {
			unencoded = append(unencoded, glyph)
		}
	}
	return unencoded
}

// FixPUA maps every unencoded glyph to the supplementary private-use-area
// code-point 0xF0000+glyphID in a UCS-4 cmap subtable. If the font has no
// UCS-4 subtable, one is synthesized, seeded from an existing UCS-2
// subtable if present.
func FixPUA(f *ot.Font) (Result, error) {
	cmap := f.Cmap()
	if cmap == nil {
		return Result{}, missingTable(f, ot.TagCmap)
	}
	unencoded := unencodedGlyphs(f)
	if len(unencoded) == 0 {
		return Result{}, nil
	}
	var res Result
	ucs4 := cmap.UCS4Subtable()
	if ucs4 == nil {
		ucs4 = &ot.CmapSubtable{
			Format:     12,
			PlatformID: ot.PlatformWindows,
			EncodingID: 10,
			Mapping:    make(map[rune]string),
		}
		if ucs2 := cmap.UCS2Subtable(); ucs2 != nil {
			ucs4.Mapping = ucs2.CloneMapping()
		}
		cmap.Subtables = append(cmap.Subtables, ucs4)
		res.logf("Added a UCS-4 cmap subtable (format 12)")
	}
	unencodedSet := make(map[string]bool, len(unencoded))
	for _, g := range unencoded {
		unencodedSet[g] = true
	}
	for gid, glyph := range f.GlyphOrder() {
		if unencodedSet[glyph] {
			ucs4.Mapping[rune(0xF0000+gid)] = glyph
		}
	}
	res.Changed = true
	res.logf("Mapped %d unencoded glyphs to PUA code-points 0xF0000+glyphID", len(unencoded))
	return res, nil
}

// --- Fixed pitch -----------------------------------------------------------

// FixIsFixedPitch samples the advance widths of the uppercase Latin letters
// A–Z. If all widths agree, the font is marked monospace: post.isFixedPitch
// is set, the PANOSE proportion sub-field follows the family-type
// classification, and hhea.advanceWidthMax / OS/2.xAvgCharWidth are
// recomputed over all positive-width glyphs. Differing widths clear the
// monospace markers. Fonts not covering all of A–Z are left untouched.
func FixIsFixedPitch(f *ot.Font) (Result, error) {
	cmap, hmtx := f.Cmap(), f.Hmtx()
	post, os2, hhea := f.Post(), f.OS2(), f.Hhea()
	switch {
	case cmap == nil:
		return Result{}, missingTable(f, ot.TagCmap)
	case hmtx == nil:
		return Result{}, missingTable(f, ot.TagHmtx)
	case post == nil:
		return Result{}, missingTable(f, ot.TagPost)
	case os2 == nil:
		return Result{}, missingTable(f, ot.TagOS2)
	case hhea == nil:
		return Result{}, missingTable(f, ot.TagHhea)
	}

	sameWidth := make(map[uint16]bool)
	for c := 'A'; c <= 'Z'; c++ {
		glyph, ok := cmap.GlyphFor(c)
		if !ok {
			return unchanged(fmt.Sprintf(
				"Skipping fixed-pitch detection: %#U is not mapped", c)), nil
		}
		metric, ok := hmtx.Metrics[glyph]
		if !ok {
			return unchanged(fmt.Sprintf(
				"Skipping fixed-pitch detection: glyph %q has no metrics", glyph)), nil
		}
		sameWidth[metric.Advance] = true
	}

	var res Result
	if len(sameWidth) != 1 {
		if post.IsFixedPitch != 0 || os2.Panose.Proportion != 0 {
			res.Changed = true
			res.logf("Font is not monospace. Cleared post.isFixedPitch and PANOSE proportion")
		}
		post.IsFixedPitch = 0
		os2.Panose.Proportion = 0
		return res, nil
	}

	if post.IsFixedPitch == 1 {
		res.logf("Skipping: post.isFixedPitch is set correctly")
	} else {
		res.Changed = true
		res.logf("Font is monospace. Set post.isFixedPitch to 1")
		post.IsFixedPitch = 1
	}

	var expected uint8
	switch os2.Panose.FamilyType {
	case 2:
		expected = 9
	case 3, 5:
		expected = 3
	case 0:
		res.Changed = true
		res.logf("Font is monospace but PANOSE is unset. " +
			"Setting defaults (FamilyType=2, Proportion=9)")
		os2.Panose.FamilyType = 2
		os2.Panose.Proportion = 9
	}
	if expected != 0 {
		if os2.Panose.Proportion == expected {
			res.logf("Skipping: PANOSE proportion is set correctly")
		} else {
			res.Changed = true
			res.logf("Font is monospace. PANOSE family type is %d, set proportion to %d",
				os2.Panose.FamilyType, expected)
			os2.Panose.Proportion = expected
		}
	}

	var widths []int
	for _, m := range hmtx.Metrics {
		if m.Advance > 0 {
			widths = append(widths, int(m.Advance))
		}
	}
	if len(widths) > 0 {
		maxWidth, sum := 0, 0
		for _, w := range widths {
			if w > maxWidth {
				maxWidth = w
			}
			sum += w
		}
		if hhea.AdvanceWidthMax == uint16(maxWidth) {
			res.logf("Skipping: hhea.advanceWidthMax is set correctly")
		} else {
			res.Changed = true
			res.logf("Font is monospace. Set hhea.advanceWidthMax to %d", maxWidth)
			hhea.AdvanceWidthMax = uint16(maxWidth)
		}
		avgWidth := otRound(float64(sum) / float64(len(widths)))
		if os2.XAvgCharWidth == int16(avgWidth) {
			res.logf("Skipping: OS/2.xAvgCharWidth is set correctly")
		} else {
			res.Changed = true
			res.logf("Font is monospace. Set OS/2.xAvgCharWidth to %d", avgWidth)
			os2.XAvgCharWidth = int16(avgWidth)
		}
	}
	return res, nil
}

// --- Italic angle ----------------------------------------------------------

// FixItalicAngle zeroes the post italic angle of any font whose style name
// does not contain "Italic". Italic fonts are left unmodified.
func FixItalicAngle(f *ot.Font) (Result, error) {
	post := f.Post()
	if post == nil {
		return Result{}, missingTable(f, ot.TagPost)
	}
	style, err := styleName(f)
	if err != nil {
		return Result{}, err
	}
	if strings.Contains(style, "Italic") || post.ItalicAngle == 0 {
		return Result{}, nil
	}
	post.ItalicAngle = 0
	return changed("Set post italicAngle to 0 for non-italic style %q", style), nil
}

// --- DSIG ------------------------------------------------------------------

// AddDummyDSIG installs an empty digital-signature table. Older versions of
// MS Word refuse fonts without one.
func AddDummyDSIG(f *ot.Font) Result {
	if f.Has(ot.TagDSIG) {
		return Result{}
	}
	dsig := ot.NewDsig()
	dsig.Version = 1
	f.SetTable(dsig)
	return changed("Added a dummy DSIG table")
}
