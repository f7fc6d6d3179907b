package fix

import (
	"unicode"

	"github.com/npillmayer/fontfix/core"
	"github.com/npillmayer/fontfix/ot"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DropSuperfluousMacNames drops Macintosh name records outside the
// profile's allow-list of semantic IDs. The listed IDs are kept so that
// legacy applications (e.g. Word 2011) keep working.
func DropSuperfluousMacNames(f *ot.Font, p Profile) (Result, error) {
	name := f.Name()
	if name == nil {
		return Result{}, missingTable(f, ot.TagName)
	}
	keep := p.keepMacSet()
	removed := name.RemoveIf(func(r ot.NameRecord) bool {
		return r.PlatformID == ot.PlatformMacintosh && !keep[r.NameID]
	})
	if !removed {
		return Result{}, nil
	}
	return changed("Removed superfluous Macintosh name records"), nil
}

// DropMacNames drops every Macintosh name record.
func DropMacNames(f *ot.Font) (Result, error) {
	name := f.Name()
	if name == nil {
		return Result{}, missingTable(f, ot.TagName)
	}
	removed := name.RemoveIf(func(r ot.NameRecord) bool {
		return r.PlatformID == ot.PlatformMacintosh
	})
	if !removed {
		return Result{}, nil
	}
	return changed("Removed all Macintosh name records"), nil
}

// markStripper decomposes strings and removes combining marks, turning
// e.g. "Sánchez" into "Sanchez".
var markStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeNameASCII rewrites name-table strings so that accented letters
// lose their combining marks. Some legacy consumers require ASCII-clean
// name records.
func NormalizeNameASCII(f *ot.Font) (Result, error) {
	name := f.Name()
	if name == nil {
		return Result{}, missingTable(f, ot.TagName)
	}
	var res Result
	for i := range name.Records {
		r := &name.Records[i]
		stripped, _, err := transform.String(markStripper, r.Value)
		if err != nil {
			return Result{}, core.WrapError(err, core.EINVALID,
				"cannot normalize name record %d of %s", r.NameID, f.Fontname)
		}
		if stripped != r.Value {
			res.Changed = true
			res.logf("Normalized name record %d: %q -> %q", r.NameID, r.Value, stripped)
			r.Value = stripped
		}
	}
	return res, nil
}
