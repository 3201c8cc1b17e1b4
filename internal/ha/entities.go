package ha

import "strings"

// EnhancedEntity is an entity decorated for the designer's picker.
type EnhancedEntity struct {
	EntityID     string         `json:"entity_id"`
	State        string         `json:"state"`
	FriendlyName string         `json:"friendly_name"`
	ShortName    string         `json:"short_name"`
	Icon         string         `json:"icon"`
	Domain       string         `json:"domain"`
	Attributes   map[string]any `json:"attributes"`
}

var domainIcons = map[string]string{
	"light":         "mdi:lightbulb",
	"switch":        "mdi:light-switch",
	"sensor":        "mdi:gauge",
	"binary_sensor": "mdi:checkbox-marked-circle",
	"cover":         "mdi:window-shutter",
	"climate":       "mdi:thermostat",
	"fan":           "mdi:fan",
	"lock":          "mdi:lock",
	"media_player":  "mdi:speaker",
}

func defaultIcon(domain string) string {
	if icon, ok := domainIcons[domain]; ok {
		return icon
	}
	return "mdi:home-assistant"
}

// Domain extracts the domain prefix of an entity id.
func Domain(entityID string) string {
	if i := strings.IndexByte(entityID, '.'); i > 0 {
		return entityID[:i]
	}
	return ""
}

// Enhance decorates a raw entity with domain, friendly name, and icon.
func Enhance(e Entity) EnhancedEntity {
	domain := Domain(e.EntityID)
	friendly, _ := e.Attributes["friendly_name"].(string)
	if friendly == "" {
		friendly = e.EntityID
	}
	icon, _ := e.Attributes["icon"].(string)
	if icon == "" {
		icon = defaultIcon(domain)
	}
	state := e.State
	if state == "" {
		state = "unknown"
	}
	return EnhancedEntity{
		EntityID:     e.EntityID,
		State:        state,
		FriendlyName: friendly,
		ShortName:    friendly,
		Icon:         icon,
		Domain:       domain,
		Attributes:   e.Attributes,
	}
}

// Filter narrows entities by domain and a case-insensitive search over
// entity id and friendly name.
func Filter(entities []Entity, domain, search string) []Entity {
	out := make([]Entity, 0, len(entities))
	search = strings.ToLower(search)
	for _, e := range entities {
		if domain != "" && !strings.HasPrefix(e.EntityID, domain+".") {
			continue
		}
		if search != "" {
			friendly, _ := e.Attributes["friendly_name"].(string)
			if !strings.Contains(strings.ToLower(e.EntityID), search) &&
				!strings.Contains(strings.ToLower(friendly), search) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}
