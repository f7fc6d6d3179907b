package fix

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/npillmayer/fontfix/ot"
)

// Profile is the publisher's distribution profile: the policy values the
// fix rules consult. A profile is constructed once per run and treated as
// immutable afterwards.
type Profile struct {
	// UnwantedTables are tables removed from fonts if present. Tables
	// outside this set are never removed, even if removal is requested.
	UnwantedTables []string `toml:"unwanted-tables"`
	// KeepMacNameIDs is the allow-list of Macintosh name-record IDs that
	// survive name-record pruning.
	KeepMacNameIDs []uint16 `toml:"keep-mac-name-ids"`
}

// DefaultProfile returns the built-in distribution profile.
//
// The unwanted tables are debugger and hinting-tool byproducts (FontForge
// timestamps, ttfautohint info, VTT sources, Glyphs debug data). The Mac
// name IDs kept are the 13 semantic IDs certain applications (e.g. Word
// 2011) still require.
func DefaultProfile() Profile {
	return Profile{
		UnwantedTables: []string{
			"FFTM", "TTFA", "TSI0", "TSI1", "TSI2", "TSI3", "TSI5", "prop", "Debg",
		},
		KeepMacNameIDs: []uint16{1, 2, 3, 4, 5, 6, 16, 17, 18, 20, 21, 22, 25},
	}
}

// LoadProfile reads a profile from a TOML file. Sections absent from the
// file keep their defaults.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	meta, err := toml.DecodeFile(path, &p)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: failed to parse profile: %w", path, err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		tracer().Infof("profile %s carries %d unrecognized keys, ignored", path, len(undec))
	}
	return p, nil
}

// unwantedSet returns the unwanted tables as a tag set.
func (p Profile) unwantedSet() map[ot.Tag]bool {
	set := make(map[ot.Tag]bool, len(p.UnwantedTables))
	for _, name := range p.UnwantedTables {
		set[ot.T(name)] = true
	}
	return set
}

// keepMacSet returns the Mac name-ID allow-list as a set.
func (p Profile) keepMacSet() map[uint16]bool {
	set := make(map[uint16]bool, len(p.KeepMacNameIDs))
	for _, id := range p.KeepMacNameIDs {
		set[id] = true
	}
	return set
}
