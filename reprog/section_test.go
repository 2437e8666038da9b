package reprog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSections_LinkTableRoutes(t *testing.T) {
	blob := section(SectionLinkTable, linkTableBody(
		LinkEntry{SrcID: 5, SrcPort: 1, DestID: 7, DestPort: 2},
		LinkEntry{SrcID: 5, SrcPort: 1, DestID: 9, DestPort: 3},
	))

	res := ParseSections(blob)
	require.NoError(t, res.Err)

	lt, ok := res.LinkTable()
	require.True(t, ok)
	require.Len(t, lt.Entries, 2)

	routes := lt.Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, []LinkDest{{DestID: 7, DestPort: 2}, {DestID: 9, DestPort: 3}},
		routes[LinkKey{SrcID: 5, SrcPort: 1}])
}

func TestParseSections_LinkTableDistinctPorts(t *testing.T) {
	blob := section(SectionLinkTable, linkTableBody(
		LinkEntry{SrcID: 5, SrcPort: 1, DestID: 7, DestPort: 2},
		LinkEntry{SrcID: 5, SrcPort: 2, DestID: 9, DestPort: 3},
	))

	lt, ok := ParseSections(blob).LinkTable()
	require.True(t, ok)

	routes := lt.Routes()
	assert.Len(t, routes, 2)
	assert.Equal(t, []LinkDest{{DestID: 9, DestPort: 3}}, routes[LinkKey{SrcID: 5, SrcPort: 2}])
}

func TestParseSections_ComponentMap(t *testing.T) {
	want := Component{
		ClassID: 1007,
		Endpoints: []Endpoint{
			{Address: 0x0A000001, Port: 1},
			{Address: 0xC0A80105, Port: 2},
		},
	}
	blob := section(SectionComponentMap, componentMapBody(want))

	res := ParseSections(blob)
	require.NoError(t, res.Err)

	cm, ok := res.ComponentMap()
	require.True(t, ok)
	require.Len(t, cm.Components, 1)
	assert.Equal(t, want, cm.Components[0])
}

func TestParseSections_MixedSections(t *testing.T) {
	var blob []byte
	blob = append(blob, section(SectionAppInfusion, []byte{0xDE, 0xAD})...)
	blob = append(blob, section(SectionLinkTable, linkTableBody(LinkEntry{SrcID: 1, DestID: 2}))...)
	blob = append(blob, section(SectionInitValues, []byte{1, 2, 3})...)
	blob = append(blob, section(SectionComponentMap, componentMapBody(Component{ClassID: 1}))...)

	res := ParseSections(blob)
	require.NoError(t, res.Err)
	require.Len(t, res.Tables, 4)

	assert.Equal(t, &Opaque{Type: SectionAppInfusion, Raw: []byte{0xDE, 0xAD}}, res.Tables[0])
	assert.Equal(t, SectionLinkTable, res.Tables[1].SectionType())

	iv, ok := res.InitValues()
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, iv.Raw)

	cm, ok := res.ComponentMap()
	require.True(t, ok)
	assert.Equal(t, uint16(1), cm.Components[0].ClassID)
	assert.Empty(t, cm.Components[0].Endpoints)
}

func TestParseSections_Overrun(t *testing.T) {
	good := section(SectionInitValues, []byte{1, 2})

	t.Run("body overrun", func(t *testing.T) {
		blob := append(append([]byte(nil), good...), 0x10, 0x00, byte(SectionLinkTable), 0x01)
		res := ParseSections(blob)
		require.ErrorIs(t, res.Err, ErrSectionOverrun)
		require.Len(t, res.Tables, 1, "sections before the failure are kept")
	})

	t.Run("truncated header", func(t *testing.T) {
		blob := append(append([]byte(nil), good...), 0x01)
		res := ParseSections(blob)
		require.ErrorIs(t, res.Err, ErrSectionOverrun)
		require.Len(t, res.Tables, 1)
	})

	t.Run("aborts remaining sections", func(t *testing.T) {
		blob := []byte{0xFF, 0x00, byte(SectionInitValues)}
		blob = append(blob, good...)
		res := ParseSections(blob)
		require.ErrorIs(t, res.Err, ErrSectionOverrun)
		assert.Empty(t, res.Tables)
	})
}

func TestParseSections_Malformed(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
	}{
		{"link count exceeds body", section(SectionLinkTable, []byte{0x02, 0x00, 1, 0, 1, 2, 0, 3})},
		{"empty link table body", section(SectionLinkTable, nil)},
		{"component offset outside body", section(SectionComponentMap, []byte{0x01, 0x00, 0x40, 0x00})},
		{"component endpoints exceed body", section(SectionComponentMap, []byte{0x01, 0x00, 0x04, 0x00, 0x02, 0x01, 0x00})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseSections(tt.blob)
			require.ErrorIs(t, res.Err, ErrMalformedSection)
			assert.Empty(t, res.Tables)
		})
	}
}

func TestParseSections_Empty(t *testing.T) {
	res := ParseSections(nil)
	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.FilledLen)
	assert.Empty(t, res.Tables)

	_, ok := res.LinkTable()
	assert.False(t, ok)
}

func TestSectionType_String(t *testing.T) {
	assert.Equal(t, "link-table", SectionLinkTable.String())
	assert.Equal(t, "section(9)", SectionType(9).String())
	assert.Equal(t, "too-large", StatusTooLarge.String())
}
