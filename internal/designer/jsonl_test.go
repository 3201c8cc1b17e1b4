package designer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportOneLinePerObject(t *testing.T) {
	objects := []Object{
		{ID: 1, Type: "btn", X: 10, Y: 20, Width: 100, Height: 50, Text: "Kitchen", EntityID: "light.kitchen", Page: 1},
		{ID: 2, Type: "label", X: 10, Y: 80, Width: 100, Height: 30, Text: "Hello", Page: 1},
	}

	out, err := Export(objects)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "btn", first["obj"])
	assert.Equal(t, float64(10), first["x"])
	assert.Equal(t, "light.kitchen", first["entity"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "label", second["obj"])
	// labels carry no w/h and absent fields must be omitted, not null
	_, hasW := second["w"]
	assert.False(t, hasW)
	_, hasEntity := second["entity"]
	assert.False(t, hasEntity)
}

func TestExportPageRecord(t *testing.T) {
	out, err := Export([]Object{{ID: 1, Type: "page", Page: 2}})
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(out))), &rec))
	assert.Equal(t, "page", rec["obj"])
	_, hasX := rec["x"]
	assert.False(t, hasX)
}

func TestExportSliderDefaults(t *testing.T) {
	out, err := Export([]Object{{ID: 3, Type: "slider", X: 0, Y: 0, Width: 200, Height: 30, Page: 1, EntityID: "light.dimmer"}})
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(out))), &rec))
	assert.Equal(t, float64(0), rec["min"])
	assert.Equal(t, float64(100), rec["max"])
}

func TestExportUnknownTypeFallsBackToButton(t *testing.T) {
	out, err := Export([]Object{{ID: 9, Type: "gauge", X: 1, Y: 2, Width: 3, Height: 4, Page: 1}})
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(out))), &rec))
	assert.Equal(t, "btn", rec["obj"])
}

func TestParseSkipsCommentsAndBadLines(t *testing.T) {
	content := strings.Join([]string{
		`{"page":1,"id":1,"obj":"btn","x":0,"y":0,"w":50,"h":30}`,
		``,
		`# hand-written comment`,
		`{not valid json`,
		`{"page":1,"id":2,"obj":"label","x":0,"y":40,"text":"Temp"}`,
	}, "\n")

	records := Parse(content)
	require.Len(t, records, 2)
	assert.Equal(t, "btn", records[0]["obj"])
	assert.Equal(t, "label", records[1]["obj"])
}

func TestRoundTripPreservesGeometryTypeEntity(t *testing.T) {
	min, max := 10, 90
	objects := []Object{
		{ID: 1, Type: "btn", X: 10, Y: 20, Width: 100, Height: 50, Text: "K", EntityID: "light.kitchen", Page: 1},
		{ID: 2, Type: "sw", X: 150, Y: 20, Width: 80, Height: 40, EntityID: "switch.fan", Page: 1},
		{ID: 3, Type: "slider", X: 10, Y: 100, Width: 200, Height: 30, EntityID: "light.dimmer", Page: 2, Min: &min, Max: &max},
	}

	out, err := Export(objects)
	require.NoError(t, err)

	back := ObjectsFromRecords(Parse(string(out)))
	require.Len(t, back, len(objects))
	for i, o := range objects {
		assert.Equal(t, o.ID, back[i].ID)
		assert.Equal(t, o.Type, back[i].Type)
		assert.Equal(t, o.X, back[i].X)
		assert.Equal(t, o.Y, back[i].Y)
		assert.Equal(t, o.Width, back[i].Width)
		assert.Equal(t, o.Height, back[i].Height)
		assert.Equal(t, o.EntityID, back[i].EntityID)
		assert.Equal(t, o.Page, back[i].Page)
	}
	assert.Equal(t, min, *back[2].Min)
	assert.Equal(t, max, *back[2].Max)
}

func TestExtractMetadata(t *testing.T) {
	records := []map[string]any{
		{"comment": "designer metadata", "project_name": "Hallway Panel", "page_size": "medium_landscape"},
		{"page": float64(1), "id": float64(1), "obj": "btn"},
	}
	meta := ExtractMetadata(records)
	assert.Equal(t, "Hallway Panel", meta.ProjectName)
	assert.Equal(t, "medium_landscape", meta.PageSize)

	meta = ExtractMetadata(nil)
	assert.Equal(t, "Imported Config", meta.ProjectName)
	assert.Equal(t, "large_portrait", meta.PageSize)
}

func TestMergeRemapsIDs(t *testing.T) {
	existing := []map[string]any{
		{"id": float64(1), "obj": "btn"},
		{"id": float64(5), "obj": "label"},
	}
	imported := []map[string]any{
		{"comment": "metadata", "project_name": "x"},
		{"id": float64(1), "obj": "sw"},
		{"id": float64(2), "obj": "slider"},
	}

	merged, idMap := Merge(existing, imported)
	require.Len(t, merged, 4) // comment dropped
	assert.Equal(t, 6, idMap[1])
	assert.Equal(t, 7, idMap[2])
	assert.Equal(t, 6, merged[2]["id"])
	// originals untouched
	assert.Equal(t, float64(1), imported[1]["id"])
}

func TestStats(t *testing.T) {
	records := []map[string]any{
		{"comment": "designer metadata", "project_name": "x"},
		{"obj": "page", "page": float64(1)},
		{"obj": "btn", "id": float64(1), "entity": "light.a"},
		{"obj": "btn", "id": float64(2), "entity": "light.a"},
		{"obj": "label", "id": float64(3)},
	}
	s := Stats(records)
	assert.Equal(t, 1, s.Pages)
	assert.Equal(t, 3, s.Objects, "metadata records are not objects")
	assert.Equal(t, 1, s.Entities)
}

func TestObjectUnmarshalAcceptsBothNamings(t *testing.T) {
	var camel Object
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"type":"btn","x":0,"y":0,"width":10,"height":10,"entityId":"light.a","backgroundColor":"#fff"}`), &camel))
	assert.Equal(t, "light.a", camel.EntityID)
	assert.Equal(t, "#fff", camel.BackgroundColor)
	assert.Equal(t, 1, camel.Page) // default page

	var snake Object
	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"type":"btn","x":0,"y":0,"width":10,"height":10,"entity_id":"light.b","background_color":"#000","font_size":12}`), &snake))
	assert.Equal(t, "light.b", snake.EntityID)
	assert.Equal(t, "#000", snake.BackgroundColor)
	assert.Equal(t, 12, snake.FontSize)
}

func TestSplitPagesOrdersAscending(t *testing.T) {
	objects := []Object{
		{ID: 1, Page: 2},
		{ID: 2, Page: 1},
		{ID: 3, Page: 2},
	}
	pages := SplitPages(objects)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].PageID)
	assert.Equal(t, 2, pages[1].PageID)
	assert.Len(t, pages[1].Objects, 2)
	assert.Len(t, Flatten(pages), 3)
}
