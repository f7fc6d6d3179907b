package fix

import (
	"testing"

	"github.com/npillmayer/fontfix/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func macNameIDs(name *ot.Name) []uint16 {
	var ids []uint16
	for _, r := range name.Records {
		if r.PlatformID == ot.PlatformMacintosh {
			ids = append(ids, r.NameID)
		}
	}
	return ids
}

func TestDropSuperfluousMacNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfix.fix")
	defer teardown()
	f := buildFont("Test", "Regular")
	name := f.Name()
	name.Set(15, ot.PlatformMacintosh, 0, 0, "Sample text")
	name.Set(19, ot.PlatformMacintosh, 0, 0, "More sample text")

	res, err := DropSuperfluousMacNames(f, DefaultProfile())
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.ElementsMatch(t, []uint16{1, 2}, macNameIDs(name),
		"IDs on the allow-list survive, IDs 15 and 19 do not")

	res, err = DropSuperfluousMacNames(f, DefaultProfile())
	require.NoError(t, err)
	assert.False(t, res.Changed, "second application must be a no-op")
}

func TestDropMacNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfix.fix")
	defer teardown()
	f := buildFont("Test", "Regular")
	res, err := DropMacNames(f)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Empty(t, macNameIDs(f.Name()))
	assert.Equal(t, "Test", f.FamilyName(), "Windows records are untouched")

	res, err = DropMacNames(f)
	require.NoError(t, err)
	assert.False(t, res.Changed)
}

func TestNormalizeNameASCII(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfix.fix")
	defer teardown()
	f := buildFont("Sánchez", "Regular")
	res, err := NormalizeNameASCII(f)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Sanchez", f.FamilyName())

	res, err = NormalizeNameASCII(f)
	require.NoError(t, err)
	assert.False(t, res.Changed, "already ASCII-clean")
}
