package fix

import (
	"sort"
	"strings"

	"github.com/emirpasic/gods/maps/treebidimap"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/fontfix/core"
)

// --- Weight table ----------------------------------------------------------

// WeightTable is an immutable bidirectional mapping between weight-name
// tokens and usWeightClass values. It is constructed once, at package
// initialization, from the base table of supported styles plus the
// documented out-of-band extension entries; it is never mutated afterwards.
type WeightTable struct {
	m        *treebidimap.Map
	byLength []string // names ordered by descending length
}

// baseWeights are the supported weight names of the distribution spec.
var baseWeights = map[string]int{
	"Thin":       100,
	"ExtraLight": 200,
	"Light":      300,
	"Regular":    400,
	"Medium":     500,
	"SemiBold":   600,
	"Bold":       700,
	"ExtraBold":  800,
	"Black":      900,
}

// extensionWeights extend the base table with out-of-band values: Hairline
// sits below the 100–1000 class range, ExtraBlack at its very top.
var extensionWeights = map[string]int{
	"Hairline":   1,
	"ExtraBlack": 1000,
}

// Weights is the process-wide weight table.
var Weights = newWeightTable()

func newWeightTable() WeightTable {
	m := treebidimap.NewWith(utils.StringComparator, utils.IntComparator)
	for name, class := range baseWeights {
		m.Put(name, class)
	}
	for name, class := range extensionWeights {
		m.Put(name, class)
	}
	names := make([]string, 0, m.Size())
	for _, k := range m.Keys() {
		names = append(names, k.(string))
	}
	// longest names first, so that "ExtraBold" wins over "Bold"
	sort.SliceStable(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return WeightTable{m: m, byLength: names}
}

// Class returns the usWeightClass value for a weight-name token.
func (w WeightTable) Class(name string) (int, bool) {
	v, ok := w.m.Get(name)
	if !ok {
		return 0, false
	}
	return v.(int), true
}

// Name returns the weight-name token for a usWeightClass value.
func (w WeightTable) Name(class int) (string, bool) {
	k, ok := w.m.GetKey(class)
	if !ok {
		return "", false
	}
	return k.(string), true
}

// Names returns the weight-name tokens ordered by descending length.
// Callers must not mutate the returned slice.
func (w WeightTable) Names() []string {
	return w.byLength
}

// --- Style classification --------------------------------------------------

// StyleClass is the semantic reading of a style name.
type StyleClass struct {
	Bold        bool   // the style carries a literal "Bold" token
	Italic      bool   // the style carries a literal "Italic" token
	WeightName  string // matched weight token; "" for a purely italic style
	WeightClass int    // usWeightClass value implied by the weight token
}

// Classify parses a style name, e.g. "ExtraBold Italic", into its semantic
// tokens. The weight token is matched against the weight table with longest
// names first. A style with no weight token is treated as implicit Regular
// if it is italic; otherwise classification fails, and weight-dependent
// fixes cannot proceed for that font.
func Classify(styleName string) (StyleClass, error) {
	tokens := strings.Fields(styleName)
	tokenSet := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = true
	}
	sc := StyleClass{
		Bold:   tokenSet["Bold"],
		Italic: tokenSet["Italic"],
	}
	for _, name := range Weights.Names() {
		if tokenSet[name] {
			sc.WeightName = name
			sc.WeightClass, _ = Weights.Class(name)
			return sc, nil
		}
	}
	if sc.Italic {
		sc.WeightClass, _ = Weights.Class("Regular")
		return sc, nil
	}
	return StyleClass{}, core.Error(core.EINVALID,
		"cannot determine weight class: style %q has no known weight token", styleName)
}
