package designer

// HaspObject is one line of the openHASP pages file. Absent fields must be
// omitted entirely, the firmware treats null and missing differently.
type HaspObject struct {
	Page     int     `json:"page"`
	ID       int     `json:"id"`
	Obj      string  `json:"obj"`
	X        *int    `json:"x,omitempty"`
	Y        *int    `json:"y,omitempty"`
	W        *int    `json:"w,omitempty"`
	H        *int    `json:"h,omitempty"`
	Text     *string `json:"text,omitempty"`
	Entity   *string `json:"entity,omitempty"`
	Action   *string `json:"action,omitempty"`
	Color    *string `json:"color,omitempty"`
	BgColor  *string `json:"bg_color,omitempty"`
	FontSize *int    `json:"font_size,omitempty"`
	Options  *string `json:"options,omitempty"`
	Min      *int    `json:"min,omitempty"`
	Max      *int    `json:"max,omitempty"`
	Val      *int    `json:"val,omitempty"`
	Value    *bool   `json:"value,omitempty"`
}

func intp(v int) *int          { return &v }
func strp(v string) *string    { return &v }
func boolp(v bool) *bool       { return &v }
func strpOr(v string) *string { // nil when empty
	if v == "" {
		return nil
	}
	return &v
}

// knownTypes maps designer widget types to openHASP obj names. Unknown
// types fall back to btn, matching what the firmware can always render.
var knownTypes = map[string]string{
	"btn":      "btn",
	"label":    "label",
	"slider":   "slider",
	"checkbox": "checkbox",
	"sw":       "sw",
	"switch":   "sw",
	"dropdown": "dropdown",
}

// ToHasp converts a designer object to its wire shape.
func ToHasp(o Object) HaspObject {
	if o.Type == "page" {
		// page records carry no geometry on the wire
		return HaspObject{Page: o.Page, ID: o.ID, Obj: "page"}
	}
	obj, ok := knownTypes[o.Type]
	if !ok {
		obj = "btn"
	}

	h := HaspObject{
		Page:     o.Page,
		ID:       o.ID,
		Obj:      obj,
		X:        intp(o.X),
		Y:        intp(o.Y),
		Entity:   strpOr(o.EntityID),
		Color:    strpOr(o.Color),
		BgColor:  strpOr(o.BackgroundColor),
		Options:  strpOr(o.Options),
	}
	if o.FontSize != 0 {
		h.FontSize = intp(o.FontSize)
	}

	switch obj {
	case "label":
		// labels are sized by their text
		h.Text = strp(o.Text)
	case "checkbox":
		h.Text = strp(o.Text)
		h.Value = boolp(false)
	case "sw":
		h.W = intp(o.Width)
		h.H = intp(o.Height)
		h.Value = boolp(false)
	case "slider":
		h.W = intp(o.Width)
		h.H = intp(o.Height)
		min, max := 0, 100
		if o.Min != nil {
			min = *o.Min
		}
		if o.Max != nil {
			max = *o.Max
		}
		h.Min = intp(min)
		h.Max = intp(max)
		h.Val = intp(min)
	case "dropdown":
		h.W = intp(o.Width)
		h.H = intp(o.Height)
		if h.Options == nil {
			h.Options = strp("")
		}
	default: // btn
		h.W = intp(o.Width)
		h.H = intp(o.Height)
		h.Text = strp(o.Text)
	}
	return h
}

// FromHasp converts a parsed wire record back into a designer object.
// Missing geometry gets designer defaults so the widget stays editable.
func FromHasp(rec map[string]any) (Object, bool) {
	obj := getString(rec, "obj")
	if obj == "" || obj == "page" {
		return Object{}, false
	}
	typ := obj
	if _, ok := knownTypes[typ]; !ok {
		typ = obj // keep unknown types as-is, the canvas shows a placeholder
	}
	o := Object{
		ID:              getInt(rec, "id", 0),
		Type:            typ,
		X:               getInt(rec, "x", 0),
		Y:               getInt(rec, "y", 0),
		Width:           getInt(rec, "w", 100),
		Height:          getInt(rec, "h", 50),
		Text:            getString(rec, "text"),
		EntityID:        getString(rec, "entity"),
		Page:            getInt(rec, "page", 1),
		Color:           getString(rec, "color"),
		BackgroundColor: getString(rec, "bg_color"),
		FontSize:        getInt(rec, "font_size", 0),
		Options:         getString(rec, "options"),
	}
	if v, ok := rec["min"]; ok {
		if n, ok := asInt(v); ok {
			o.Min = &n
		}
	}
	if v, ok := rec["max"]; ok {
		if n, ok := asInt(v); ok {
			o.Max = &n
		}
	}
	return o, true
}

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func getInt(m map[string]any, key string, def int) int {
	if v, ok := m[key]; ok {
		if n, ok := asInt(v); ok {
			return n
		}
	}
	return def
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}
