/*
Package ot provides a field-level, in-memory model of OpenType font tables.

Intended audience for this package are tools that inspect or normalize the
metadata tables of a font — weight classes, selection flags, vertical
metrics, name records — without ever touching the binary layout of the font
file. Reading a font file into this model, and serializing the model back
out, is the job of a codec which is deliberately not part of this package.
Clients hand us fonts that are already parsed; we expose tables as plain Go
structs with typed fields and let callers mutate them in place.

Tables are looked up by their 4-letter tag:

	os2, ok := font.Table(ot.T("OS/2")).(*ot.OS2)

For the tables this package models semantically (head, OS/2, hhea, name,
cmap, post, …) there are typed convenience accessors:

	os2 := font.OS2()          // nil if the font has no OS/2 table
	os2.UsWeightClass = 700

Tables we have no need to interpret are carried as RawTable values, so no
table information is dropped when a font travels through this package.

Glyphs are identified by name, as is common for font manipulation tools.
The glyph-order slice of a Font assigns indices to names; tables which
conceptually reference glyphs by index (hmtx, glyf, HVAR) are keyed by name
in this model, so renumbering the glyph ID space is a single mutation of the
glyph-order slice.

# Status

Variable-font support covers the fvar axes and named instances needed for
metadata normalization. Outline data is modelled only as far as empty-glyph
detection and bounding boxes require.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontfix.fonts'
func tracer() tracing.Trace {
	return tracing.Select("fontfix.fonts")
}
