/*
Package fix normalizes the metadata tables of a font family so the fonts
conform to a publisher's distribution specification.

The engine is a set of ordered, idempotent table-mutation rules. Rules
operate on the in-memory table model of package ot; they never touch the
binary layout of a font file. Every rule reports whether it changed
anything, plus human-readable diagnostics, and the pipeline aggregates
these into a single save-or-skip decision per font:

	fx := fix.NewFixer(font, saver)
	defer fx.Close()                    // saves iff a rule reported a change
	err := fx.FixFont(opts)

Family-wide operations (vertical-metrics harmonization, STAT generation)
need every member font in memory at once and are driven by FixFamily.

External collaborators — the binary codec, the axis-registry naming
service, the reference catalog, the STAT generator and the color
rasterizer — are consumed through narrow interfaces declared in this
package, so the engine can be exercised against fakes.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fix

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontfix.fix'
func tracer() tracing.Trace {
	return tracing.Select("fontfix.fix")
}
