package fix

import (
	"errors"

	"github.com/npillmayer/fontfix/core"
	"github.com/npillmayer/fontfix/ot"
)

// Options configure a fix run. The zero value fixes a single font with the
// default profile and no external services; operations needing a service
// (name-table rebuild, catalog inheritance, STAT generation) require the
// corresponding field to be set.
type Options struct {
	Profile            Profile
	IncludeSourceFixes bool               // also apply the source-of-truth normalization rules
	NewFamilyName      string             // rename the font family if non-empty
	FvarAxisDefaults   map[string]float64 // pinned axis positions for instance rebuilding

	Naming  Naming
	Catalog Catalog
	Stats   StatGenerator
	Colr    *ColrFixer
}

func (o Options) profile() Profile {
	if o.Profile.UnwantedTables == nil && o.Profile.KeepMacNameIDs == nil {
		return DefaultProfile()
	}
	return o.Profile
}

func (o Options) naming(f *ot.Font) (Naming, error) {
	if o.Naming == nil {
		return nil, core.Error(core.EMISSING,
			"no naming service configured, cannot rebuild names of %s", f.Fontname)
	}
	return o.Naming, nil
}

func (o Options) colrFixer() *ColrFixer {
	if o.Colr != nil {
		return o.Colr
	}
	return NewColrFixer(nil)
}

// advise appends the standard "fix the source" advisory to a rule result
// that changed something.
func advise(r Result) Result {
	if r.Changed {
		r.logf("Consider fixing the source instead of the binary")
	}
	return r
}

// --- Pipeline --------------------------------------------------------------

// Pipeline is an ordered list of rules applied to one font.
type Pipeline struct {
	Rules []Rule
}

// Run applies every rule in order, aggregating change flags and messages.
// A rule error aborts the run; the result accumulated so far is returned
// alongside the error.
func (p Pipeline) Run(f *ot.Font) (Result, error) {
	var res Result
	for _, rule := range p.Rules {
		r, err := rule.Apply(f)
		res = res.merge(r)
		if err != nil {
			return res, core.WrapError(err, core.Code(err),
				"fix rule %s failed on %s", rule.Name, f.Fontname)
		}
		tracer().Debugf("rule %s on %s: changed=%v", rule.Name, f.Fontname, r.Changed)
	}
	return res, nil
}

// --- Single-font entry point -----------------------------------------------

// FixFont applies the single-font fixes in their canonical order: rename,
// OS/2 version clamp, hinting bootstrap, variations PostScript name (only
// if missing), COLR repair, and — with IncludeSourceFixes — the full
// normalization rule set.
func FixFont(f *ot.Font, opts Options) (Result, error) {
	var res Result
	profile := opts.profile()

	if opts.NewFamilyName != "" {
		naming, err := opts.naming(f)
		if err != nil {
			return res, err
		}
		r, err := RenameFont(f, naming, opts.NewFamilyName)
		res = res.merge(r)
		if err != nil {
			return res, err
		}
	}

	if os2 := f.OS2(); os2 != nil && os2.Version > 1 && os2.Version != ot.OS2VersionMax {
		os2.Version = ot.OS2VersionMax
		res = res.merge(changed("Set OS/2 table version to %d", ot.OS2VersionMax))
	}

	if f.Has(ot.TagFpgm) {
		r, err := FixHintedFont(f)
		res = res.merge(r)
		if err != nil {
			return res, err
		}
	} else {
		res = res.merge(FixUnhintedFont(f))
	}

	if f.IsVariable() {
		name := f.Name()
		if name == nil {
			return res, missingTable(f, ot.TagName)
		}
		psName := name.Get(ot.NameIDVariationsPSNamePrefix,
			ot.PlatformWindows, 1, ot.LanguageWindowsEnUS)
		if psName == nil {
			naming, err := opts.naming(f)
			if err != nil {
				return res, err
			}
			if err := naming.BuildVariationsPSName(f); err != nil {
				return res, err
			}
			prefix := name.DebugName(ot.NameIDVariationsPSNamePrefix)
			res = res.merge(changed(
				"Added a variations PostScript name prefix (nameID 25) %q", prefix))
		}
	}

	if f.Has(ot.TagCOLR) {
		tracer().Infof("fixing COLR font %s", f.Fontname)
		r, err := opts.colrFixer().Fix(f)
		res = res.merge(r)
		if err != nil {
			return res, err
		}
	}

	if !opts.IncludeSourceFixes {
		return res, nil
	}

	res = res.merge(RemoveTables(f, profile))
	naming, err := opts.naming(f)
	if err != nil {
		return res, err
	}
	r, err := FixNameTable(f, naming)
	res = res.merge(r)
	if err != nil {
		return res, err
	}
	for _, step := range []struct {
		name  string
		apply func(*ot.Font) (Result, error)
	}{
		{"fs-type", FixFsType},
		{"fs-selection", FixFsSelection},
		{"mac-style", FixMacStyle},
		{"weight-class", FixWeightClass},
		{"italic-angle", FixItalicAngle},
	} {
		r, err := step.apply(f)
		res = res.merge(advise(r))
		if err != nil {
			return res, core.WrapError(err, core.Code(err),
				"fix rule %s failed on %s", step.name, f.Fontname)
		}
	}
	if f.IsVariable() {
		naming, err := opts.naming(f)
		if err != nil {
			return res, err
		}
		r, err := FixFvarInstances(f, naming, opts.FvarAxisDefaults)
		res = res.merge(r)
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// --- Family entry point ----------------------------------------------------

// ValidateFamily checks that every font declares the same, non-empty family
// name. A mismatch is fatal; no font of the family is mutated afterwards.
func ValidateFamily(fonts []*ot.Font) error {
	if len(fonts) == 0 {
		return core.Error(core.EINVALID, "family is empty")
	}
	familyName := fonts[0].FamilyName()
	if familyName == "" {
		return core.Error(core.EMISSING,
			"font %s declares no family name", fonts[0].Fontname)
	}
	for _, f := range fonts[1:] {
		if name := f.FamilyName(); name != familyName {
			return core.Error(core.EINVALID,
				"family name mismatch: %s declares %q, expected %q",
				f.Fontname, name, familyName)
		}
	}
	return nil
}

// FixFamily fixes every font of a family, then harmonizes the family-wide
// properties. With IncludeSourceFixes set it additionally tries to inherit
// reference metrics from the catalog (degrading to a warning if the family
// is unknown there or credentials are missing), harmonizes vertical
// metrics, and generates STAT tables when every member is a variable font.
func FixFamily(fonts []*ot.Font, opts Options) (Result, error) {
	if err := ValidateFamily(fonts); err != nil {
		return Result{}, err
	}
	var res Result
	for _, f := range fonts {
		r, err := FixFont(f, opts)
		res = res.merge(r)
		if err != nil {
			return res, err
		}
	}
	if !opts.IncludeSourceFixes {
		return res, nil
	}

	familyName := fonts[0].FamilyName()
	if opts.Catalog != nil {
		r, err := inheritFromCatalog(fonts, opts.Catalog, familyName)
		res = res.merge(r)
		if err != nil {
			return res, err
		}
	}

	r, err := FixVerticalMetrics(fonts)
	res = res.merge(r)
	if err != nil {
		return res, err
	}

	allVariable := true
	for _, f := range fonts {
		if !f.IsVariable() {
			allVariable = false
			break
		}
	}
	if allVariable && opts.Stats != nil {
		if err := opts.Stats.GenerateStatTables(fonts, statAxisOrder); err != nil {
			return res, err
		}
		res = res.merge(changed("Generated STAT tables for the variable family"))
	}
	return res, nil
}

// inheritFromCatalog wraps InheritVerticalMetrics with the recoverable
// catalog failure modes: an unknown family or missing credentials degrade
// to skipping the inheritance step.
func inheritFromCatalog(fonts []*ot.Font, catalog Catalog, familyName string) (Result, error) {
	has, err := catalog.HasFamily(familyName)
	if err != nil {
		if errors.Is(err, ErrNoCredentials) {
			tracer().Errorf("catalog credentials missing, skipping regression fixes")
			return unchanged("No catalog credentials, skipped metrics inheritance"), nil
		}
		return Result{}, core.WrapError(err, core.ECONNECTION,
			"reference catalog lookup for %q failed", familyName)
	}
	if !has {
		tracer().Infof("%s is not in the reference catalog, skipping regression fixes", familyName)
		return unchanged("Family not in the reference catalog, skipped metrics inheritance"), nil
	}
	r, err := InheritVerticalMetrics(fonts, catalog, familyName)
	if err != nil {
		if errors.Is(err, ErrFamilyNotFound) || errors.Is(err, ErrNoCredentials) {
			tracer().Errorf("catalog fetch for %q failed: %v", familyName, err)
			return unchanged("Catalog fetch failed, skipped metrics inheritance"), nil
		}
		return r, err
	}
	return r, nil
}

// --- Fixer -----------------------------------------------------------------

// Fixer binds a fix run to one font and one persistence target. Mutation
// only ever touches the bound font handle. The save-or-skip decision
// happens exactly once, in Close, so the contract holds on every exit path
// as long as Close is deferred right after acquisition:
//
//	fx := fix.NewFixer(font, saver)
//	defer fx.Close()
//	if err := fx.FixFont(opts); err != nil { … }
type Fixer struct {
	font   *ot.Font
	saver  Saver
	res    Result
	closed bool
}

// NewFixer acquires a fixer for a font. saver may be nil, in which case
// Close only reports.
func NewFixer(f *ot.Font, saver Saver) *Fixer {
	return &Fixer{font: f, saver: saver}
}

// Font exposes the bound font handle.
func (fx *Fixer) Font() *ot.Font {
	return fx.font
}

// Changed reports whether any rule applied so far mutated the font.
func (fx *Fixer) Changed() bool {
	return fx.res.Changed
}

// Messages returns the diagnostics accumulated so far, in rule order.
func (fx *Fixer) Messages() []string {
	return fx.res.Messages
}

// Apply runs a pipeline of rules over the bound font.
func (fx *Fixer) Apply(rules ...Rule) error {
	r, err := Pipeline{Rules: rules}.Run(fx.font)
	fx.res = fx.res.merge(r)
	return err
}

// FixFont runs the single-font entry point on the bound font.
func (fx *Fixer) FixFont(opts Options) error {
	r, err := FixFont(fx.font, opts)
	fx.res = fx.res.merge(r)
	return err
}

// Close reports the accumulated diagnostics and persists the font iff any
// rule reported a change. Close is idempotent; only the first call decides.
func (fx *Fixer) Close() error {
	if fx.closed {
		return nil
	}
	fx.closed = true
	for _, msg := range fx.res.Messages {
		tracer().Infof("%s: %s", fx.font.Fontname, msg)
	}
	if !fx.res.Changed {
		tracer().Infof("no changes needed on %s", fx.font.Fontname)
		return nil
	}
	if fx.saver == nil {
		return nil
	}
	tracer().Infof("saving %s", fx.font.Fontname)
	return fx.saver.Save(fx.font)
}
