package ot

// The name table and its records.
// https://docs.microsoft.com/en-us/typography/opentype/spec/name

// Name-record IDs the fix engine cares about.
const (
	NameIDFamily                 uint16 = 1
	NameIDSubfamily              uint16 = 2
	NameIDUniqueID               uint16 = 3
	NameIDFullName               uint16 = 4
	NameIDVersion                uint16 = 5
	NameIDPostScriptName         uint16 = 6
	NameIDTypoFamily             uint16 = 16
	NameIDTypoSubfamily          uint16 = 17
	NameIDCompatibleFull         uint16 = 18
	NameIDPostScriptCID          uint16 = 20
	NameIDWWSFamily              uint16 = 21
	NameIDWWSSubfamily           uint16 = 22
	NameIDVariationsPSNamePrefix uint16 = 25
)

// Platform IDs.
const (
	PlatformUnicode   uint16 = 0
	PlatformMacintosh uint16 = 1
	PlatformWindows   uint16 = 3
)

// LanguageWindowsEnUS is the Windows language ID for US English.
const LanguageWindowsEnUS uint16 = 0x409

// NameRecord is one entry of the name table. Value holds the decoded string;
// the platform-specific byte encoding stays with the codec.
type NameRecord struct {
	NameID     uint16
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	Value      string
}

// Name is the naming table of a font.
type Name struct {
	tableBase
	Records []NameRecord
}

func NewName() *Name {
	return &Name{tableBase: tableBase{TagName}}
}

// Get returns a pointer to the record with the exact id/platform/encoding/
// language combination, or nil.
func (t *Name) Get(nameID, platformID, encodingID, languageID uint16) *NameRecord {
	for i := range t.Records {
		r := &t.Records[i]
		if r.NameID == nameID && r.PlatformID == platformID &&
			r.EncodingID == encodingID && r.LanguageID == languageID {
			return r
		}
	}
	return nil
}

// Set inserts or replaces the record with the given identity.
func (t *Name) Set(nameID, platformID, encodingID, languageID uint16, value string) {
	if r := t.Get(nameID, platformID, encodingID, languageID); r != nil {
		r.Value = value
		return
	}
	t.Records = append(t.Records, NameRecord{
		NameID:     nameID,
		PlatformID: platformID,
		EncodingID: encodingID,
		LanguageID: languageID,
		Value:      value,
	})
}

// RemoveIf deletes every record for which pred is true and reports whether
// any record was removed.
func (t *Name) RemoveIf(pred func(NameRecord) bool) bool {
	kept := t.Records[:0]
	removed := false
	for _, r := range t.Records {
		if pred(r) {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	t.Records = kept
	return removed
}

// DebugName returns the value of the first record carrying the given name
// ID, preferring the Windows en-US record, or "" if the font has none.
func (t *Name) DebugName(nameID uint16) string {
	if r := t.Get(nameID, PlatformWindows, 1, LanguageWindowsEnUS); r != nil {
		return r.Value
	}
	for i := range t.Records {
		if t.Records[i].NameID == nameID {
			return t.Records[i].Value
		}
	}
	return ""
}

// BestFamilyName returns the typographic family name (ID 16) if present,
// else the legacy family name (ID 1), else "".
func (t *Name) BestFamilyName() string {
	if s := t.DebugName(NameIDTypoFamily); s != "" {
		return s
	}
	return t.DebugName(NameIDFamily)
}

// BestSubfamilyName returns the typographic subfamily name (ID 17) if
// present, else the legacy subfamily name (ID 2), else "".
func (t *Name) BestSubfamilyName() string {
	if s := t.DebugName(NameIDTypoSubfamily); s != "" {
		return s
	}
	return t.DebugName(NameIDSubfamily)
}

// FamilyName returns the family name of a font, or "" if the font has no
// name table or no family record.
func (f *Font) FamilyName() string {
	if n := f.Name(); n != nil {
		return n.BestFamilyName()
	}
	return ""
}

// StyleName returns the style (subfamily) name of a font, or "".
func (f *Font) StyleName() string {
	if n := f.Name(); n != nil {
		return n.BestSubfamilyName()
	}
	return ""
}
