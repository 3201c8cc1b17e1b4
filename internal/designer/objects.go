package designer

import "encoding/json"

// Object is a widget as the designer frontend sends it. Coordinates are
// design-time pixels on the target panel.
type Object struct {
	ID              int    `json:"id"`
	Type            string `json:"type"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Text            string `json:"text,omitempty"`
	EntityID        string `json:"entityId,omitempty"`
	Page            int    `json:"page"`
	Color           string `json:"color,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	FontSize        int    `json:"fontSize,omitempty"`
	Options         string `json:"options,omitempty"`
	Min             *int   `json:"min,omitempty"`
	Max             *int   `json:"max,omitempty"`
}

// UnmarshalJSON accepts both the frontend's camelCase names and the
// snake_case names used in stored layouts.
func (o *Object) UnmarshalJSON(b []byte) error {
	type alias Object
	aux := struct {
		*alias
		EntitySnake string `json:"entity_id"`
		BgSnake     string `json:"background_color"`
		FontSnake   int    `json:"font_size"`
	}{alias: (*alias)(o)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if o.EntityID == "" {
		o.EntityID = aux.EntitySnake
	}
	if o.BackgroundColor == "" {
		o.BackgroundColor = aux.BgSnake
	}
	if o.FontSize == 0 {
		o.FontSize = aux.FontSnake
	}
	if o.Page == 0 {
		o.Page = 1
	}
	return nil
}

// Page groups objects for layout storage.
type Page struct {
	PageID  int      `json:"page_id"`
	Objects []Object `json:"objects"`
}

// LayoutDoc is a saved layout with metadata.
type LayoutDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Pages       []Page `json:"pages"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// SplitPages groups a flat object list into ordered pages.
func SplitPages(objects []Object) []Page {
	byPage := map[int][]Object{}
	order := []int{}
	for _, o := range objects {
		if _, ok := byPage[o.Page]; !ok {
			order = append(order, o.Page)
		}
		byPage[o.Page] = append(byPage[o.Page], o)
	}
	// stable ascending page order
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if order[j] < order[i] {
				order[i], order[j] = order[j], order[i]
			}
		}
	}
	pages := make([]Page, 0, len(order))
	for _, p := range order {
		pages = append(pages, Page{PageID: p, Objects: byPage[p]})
	}
	return pages
}

// Flatten is the inverse of SplitPages.
func Flatten(pages []Page) []Object {
	var out []Object
	for _, p := range pages {
		out = append(out, p.Objects...)
	}
	return out
}
