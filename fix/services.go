package fix

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/npillmayer/fontfix/ot"
)

// The fix engine treats everything that reads, writes, fetches or rebuilds
// font binaries as a black-box collaborator behind one of the interfaces in
// this file.

// Codec reads and writes the binary container format. Parsing and
// serialization of the byte layout live entirely behind this interface.
type Codec interface {
	Load(path string) (*ot.Font, error)
	Save(f *ot.Font, path string) error
}

// Saver persists one mutated font resource. Implementations are expected to
// write to the font's storage location with a non-destructive suffix.
type Saver interface {
	Save(f *ot.Font) error
}

// Naming is the axis-registry naming service. All calls mutate the font's
// name table (and fvar instance list) in place.
type Naming interface {
	// BuildNameTable rebuilds the name records. familyName overrides the
	// font's family name if non-empty.
	BuildNameTable(f *ot.Font, familyName string) error
	// BuildFvarInstances replaces the named-instance list of a variable
	// font. axisDefaults pins non-wght axes, and may be nil.
	BuildFvarInstances(f *ot.Font, axisDefaults map[string]float64) error
	// BuildVariationsPSName constructs the variations PostScript name
	// prefix (name ID 25).
	BuildVariationsPSName(f *ot.Font) error
	// BuildFilename derives the canonical file name for a font.
	BuildFilename(f *ot.Font) string
}

// Catalog is the publisher's reference catalog of released families.
// Both calls may fail with ErrFamilyNotFound or ErrNoCredentials; callers
// treat these as recoverable and degrade to skipping the dependent step.
type Catalog interface {
	HasFamily(name string) (bool, error)
	DownloadFamily(name string) ([]*ot.Font, error)
}

// Catalog failure conditions, non-fatal to family fixing.
var (
	ErrFamilyNotFound = errors.New("family not found in reference catalog")
	ErrNoCredentials  = errors.New("reference catalog credentials not available")
)

// StatGenerator builds STAT tables for the variable fonts of a family.
type StatGenerator interface {
	GenerateStatTables(fonts []*ot.Font, axisOrder []string) error
}

// statAxisOrder is the axis precedence used when generating STAT tables.
var statAxisOrder = []string{"opsz", "wdth", "wght", "ital", "slnt"}

// Rasterizer regenerates a color font so that it additionally carries a
// scalable-graphics ("SVG ") table.
type Rasterizer interface {
	AddScalableGraphics(f *ot.Font) (*ot.Font, error)
}

// GlyphReorderer renumbers the glyph-index space of a font.
type GlyphReorderer interface {
	Reorder(f *ot.Font, order []string) error
}

// --- Exec rasterizer -------------------------------------------------------

// ExecRasterizer shells out to an external rasterization tool (such as
// nanoemoji's maximum_color) which takes an input font path and a build
// directory and emits a rebuilt font file of the same name. The rebuilt
// file is read back through the codec.
type ExecRasterizer struct {
	Tool  string // tool executable, e.g. "maximum_color"
	Codec Codec
}

// AddScalableGraphics runs the tool on the font's file and loads the result.
func (x ExecRasterizer) AddScalableGraphics(f *ot.Font) (*ot.Font, error) {
	buildDir, err := os.MkdirTemp("", "fontfix-colr-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(buildDir)
	outName := filepath.Base(f.Filepath)
	cmd := exec.Command(x.Tool, f.Filepath, "--build_dir", buildDir, "--output_file", outName)
	tracer().Infof("running %s on %s", x.Tool, f.Filepath)
	if out, err := cmd.CombinedOutput(); err != nil {
		tracer().Errorf("%s failed: %s", x.Tool, string(out))
		return nil, err
	}
	return x.Codec.Load(filepath.Join(buildDir, outName))
}

// --- Default glyph reorderer -----------------------------------------------

// orderReorderer reorders through the table model itself. Tables are keyed
// by glyph name, so swapping the order slice renumbers every index consumer.
type orderReorderer struct{}

func (orderReorderer) Reorder(f *ot.Font, order []string) error {
	f.SetGlyphOrder(order)
	return nil
}
