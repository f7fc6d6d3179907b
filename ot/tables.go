package ot

// Typed models for the metadata tables the fix engine works on. All values
// are font-unit quantities unless noted otherwise. Fields follow the naming
// of the OpenType specification, with casing adapted to Go.

// --- head ------------------------------------------------------------------

// Head gives global information about the font.
// https://docs.microsoft.com/en-us/typography/opentype/spec/head
type Head struct {
	tableBase
	Flags      uint16
	UnitsPerEm uint16
	XMin       int16
	YMin       int16
	XMax       int16
	YMax       int16
	MacStyle   uint16
}

// head flags
const (
	HeadFlagBaselineAtZero     uint16 = 1 << 0
	HeadFlagForcePPEMToInteger uint16 = 1 << 3
)

// head macStyle bits
const (
	MacStyleBold   uint16 = 1 << 0
	MacStyleItalic uint16 = 1 << 1
)

func NewHead() *Head {
	return &Head{tableBase: tableBase{TagHead}}
}

// --- OS/2 ------------------------------------------------------------------

// Panose is the 10-byte PANOSE classification from the OS/2 table.
type Panose struct {
	FamilyType      uint8
	SerifStyle      uint8
	Weight          uint8
	Proportion      uint8
	Contrast        uint8
	StrokeVariation uint8
	ArmStyle        uint8
	LetterForm      uint8
	Midline         uint8
	XHeight         uint8
}

// OS2 is the OS/2 and Windows metrics table.
// https://docs.microsoft.com/en-us/typography/opentype/spec/os2
type OS2 struct {
	tableBase
	Version        uint16
	XAvgCharWidth  int16
	UsWeightClass  uint16
	UsWidthClass   uint16
	FsType         uint16
	Panose         Panose
	FsSelection    uint16
	TypoAscender   int16
	TypoDescender  int16
	TypoLineGap    int16
	WinAscent      uint16
	WinDescent     uint16
	CapHeight      int16
	XHeight        int16
}

// OS/2 fsSelection bits
const (
	FsSelItalic         uint16 = 1 << 0
	FsSelBold           uint16 = 1 << 5
	FsSelRegular        uint16 = 1 << 6
	FsSelUseTypoMetrics uint16 = 1 << 7
)

// OS2VersionMax is the highest OS/2 table version this module emits.
const OS2VersionMax uint16 = 4

func NewOS2() *OS2 {
	return &OS2{tableBase: tableBase{TagOS2}}
}

// UseTypoMetrics reports whether fsSelection bit 7 is set.
func (t *OS2) UseTypoMetrics() bool {
	return t.FsSelection&FsSelUseTypoMetrics != 0
}

// --- hhea ------------------------------------------------------------------

// Hhea is the horizontal header table.
type Hhea struct {
	tableBase
	Ascent          int16
	Descent         int16
	LineGap         int16
	AdvanceWidthMax uint16
}

func NewHhea() *Hhea {
	return &Hhea{tableBase: tableBase{TagHhea}}
}

// --- maxp ------------------------------------------------------------------

// Maxp holds the glyph count of the font.
type Maxp struct {
	tableBase
	NumGlyphs uint16
}

func NewMaxp() *Maxp {
	return &Maxp{tableBase: tableBase{TagMaxp}}
}

// --- post ------------------------------------------------------------------

// Post carries PostScript-related metadata.
type Post struct {
	tableBase
	ItalicAngle  float64 // italic slant in degrees, counter-clockwise
	IsFixedPitch uint32  // non-zero means monospaced
}

func NewPost() *Post {
	return &Post{tableBase: tableBase{TagPost}}
}

// --- hmtx ------------------------------------------------------------------

// Metric is the horizontal metric record for one glyph.
type Metric struct {
	Advance uint16
	LSB     int16
}

// Hmtx holds horizontal glyph metrics, keyed by glyph name.
type Hmtx struct {
	tableBase
	Metrics map[string]Metric
}

func NewHmtx() *Hmtx {
	return &Hmtx{
		tableBase: tableBase{TagHmtx},
		Metrics:   make(map[string]Metric),
	}
}

// --- glyf ------------------------------------------------------------------

// Glyph is the outline information the fix engine needs: contour count and
// vertical extent. Full outline data stays with the codec.
type Glyph struct {
	Contours int
	YMin     int16
	YMax     int16
}

// IsEmpty reports whether the glyph has no outline.
func (g *Glyph) IsEmpty() bool {
	return g == nil || g.Contours == 0
}

// Glyf holds glyph outlines, keyed by glyph name.
type Glyf struct {
	tableBase
	Glyphs map[string]*Glyph
}

func NewGlyf() *Glyf {
	return &Glyf{
		tableBase: tableBase{TagGlyf},
		Glyphs:    make(map[string]*Glyph),
	}
}

// --- fvar ------------------------------------------------------------------

// VariationAxis is one design axis of a variable font.
type VariationAxis struct {
	Tag     string // e.g. "wght"
	Minimum float64
	Default float64
	Maximum float64
	NameID  uint16
}

// NamedInstance is a named location in the design space.
type NamedInstance struct {
	SubfamilyNameID  uint16
	PostScriptNameID uint16
	Coordinates      map[string]float64
}

// Fvar is the font-variations table of a variable font.
type Fvar struct {
	tableBase
	Axes      []VariationAxis
	Instances []NamedInstance
}

func NewFvar() *Fvar {
	return &Fvar{tableBase: tableBase{TagFvar}}
}

// Axis returns the axis with the given tag, or nil.
func (t *Fvar) Axis(tag string) *VariationAxis {
	for i := range t.Axes {
		if t.Axes[i].Tag == tag {
			return &t.Axes[i]
		}
	}
	return nil
}

// --- gasp ------------------------------------------------------------------

// gasp range behavior flags
const (
	GaspGridFit          uint16 = 1 << 0
	GaspDoGray           uint16 = 1 << 1
	GaspSymmetricGridFit uint16 = 1 << 2
	GaspSymmetricSmooth  uint16 = 1 << 3
)

// Gasp is the grid-fitting and scan-conversion procedure table. Ranges maps
// the upper PPEM limit of a range to its behavior flags.
type Gasp struct {
	tableBase
	Ranges map[uint16]uint16
}

func NewGasp() *Gasp {
	return &Gasp{
		tableBase: tableBase{TagGasp},
		Ranges:    make(map[uint16]uint16),
	}
}

// --- prep / fpgm -----------------------------------------------------------

// Program is a TrueType instruction program, modelled as assembly mnemonics.
type Program struct {
	Assembly []string
}

// Equal compares two programs instruction by instruction.
func (p Program) Equal(other Program) bool {
	if len(p.Assembly) != len(other.Assembly) {
		return false
	}
	for i, instr := range p.Assembly {
		if other.Assembly[i] != instr {
			return false
		}
	}
	return true
}

// Prep is the control-value program table, run whenever the point size or
// transformation changes.
type Prep struct {
	tableBase
	Program Program
}

func NewPrep() *Prep {
	return &Prep{tableBase: tableBase{TagPrep}}
}

// Fpgm is the font program table. Its presence marks a hinted font.
type Fpgm struct {
	tableBase
	Program Program
}

func NewFpgm() *Fpgm {
	return &Fpgm{tableBase: tableBase{TagFpgm}}
}

// --- DSIG ------------------------------------------------------------------

// Dsig is a digital-signature table. Some legacy applications require at
// least an empty one to be present.
type Dsig struct {
	tableBase
	Version uint32
	Flags   uint16
	NumSigs uint16
}

func NewDsig() *Dsig {
	return &Dsig{tableBase: tableBase{TagDSIG}}
}

// --- HVAR ------------------------------------------------------------------

// NoVariationIndex is the sentinel delta-set index meaning "no variation
// data" for a glyph.
const NoVariationIndex uint32 = 0xFFFFFFFF

// Hvar holds the horizontal metrics variation maps of a variable font,
// keyed by glyph name. A nil map means the font has no such mapping and
// deltas are implied by glyph ID.
type Hvar struct {
	tableBase
	AdvWidthMap map[string]uint32
	LsbMap      map[string]uint32
	RsbMap      map[string]uint32
}

func NewHvar() *Hvar {
	return &Hvar{tableBase: tableBase{TagHVAR}}
}

// --- COLR / SVG ------------------------------------------------------------

// Colr is the color table of a layered color font. The fix engine only needs
// its version; layer data stays with the codec.
type Colr struct {
	tableBase
	Version uint16
}

func NewColr(version uint16) *Colr {
	return &Colr{tableBase{TagCOLR}, version}
}

// Svg marks the presence of a scalable-graphics table.
type Svg struct {
	tableBase
}

func NewSvg() *Svg {
	return &Svg{tableBase{TagSVG}}
}
