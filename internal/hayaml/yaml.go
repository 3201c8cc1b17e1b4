package hayaml

import (
	"fmt"

	"haspd/internal/designer"
	"haspd/internal/ha"

	"gopkg.in/yaml.v3"
)

type serviceCall struct {
	Service string            `yaml:"service"`
	Target  map[string]string `yaml:"target,omitempty"`
	Data    map[string]string `yaml:"data,omitempty"`
}

type objectConfig struct {
	Obj        string                   `yaml:"obj"`
	Properties map[string]string        `yaml:"properties,omitempty"`
	Event      map[string][]serviceCall `yaml:"event,omitempty"`
	State      []serviceCall            `yaml:"state,omitempty"`
}

type deviceConfig struct {
	Objects []objectConfig `yaml:"objects"`
}

// toggle services per entity domain for interactive widgets.
var toggleServices = map[string]string{
	"light":        "light.toggle",
	"switch":       "switch.toggle",
	"cover":        "cover.toggle",
	"fan":          "fan.toggle",
	"climate":      "climate.toggle",
	"lock":         "lock.toggle",
	"media_player": "media_player.toggle",
}

func isInteractive(typ string) bool {
	switch typ {
	case "btn", "sw", "switch", "checkbox":
		return true
	}
	return false
}

// Generate builds a Home Assistant package for a deployed configuration:
// touch events on interactive widgets toggle their entity, and state
// automations push entity changes back to the panel.
func Generate(objects []designer.Object, deviceID string) (string, error) {
	cfg := deviceConfig{Objects: []objectConfig{}}

	for _, o := range objects {
		if o.Type == "page" {
			continue
		}
		cfg.Objects = append(cfg.Objects, objectEntry(o, deviceID))
	}

	doc := map[string]map[string]deviceConfig{
		"openhasp": {deviceID: cfg},
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal yaml: %w", err)
	}
	return string(out), nil
}

// SuggestedPath is where the generated package belongs in the HA config.
func SuggestedPath(deviceID string) string {
	return fmt.Sprintf("/config/packages/openhasp_%s.yaml", deviceID)
}

func objectEntry(o designer.Object, deviceID string) objectConfig {
	// openHASP addresses widgets as p<page>b<id>
	objName := fmt.Sprintf("p%db%d", o.Page, o.ID)

	entry := objectConfig{Obj: objName}
	if o.Text != "" {
		entry.Properties = map[string]string{"text": o.Text}
	}
	if o.EntityID == "" {
		return entry
	}

	if isInteractive(o.Type) {
		domain := ha.Domain(o.EntityID)
		service, ok := toggleServices[domain]
		if !ok {
			service = "homeassistant.toggle"
		}
		entry.Event = map[string][]serviceCall{
			"down": {{
				Service: service,
				Target:  map[string]string{"entity_id": o.EntityID},
			}},
		}
	}

	entry.State = stateUpdate(o.EntityID, objName, deviceID)
	return entry
}

func stateUpdate(entityID, objName, deviceID string) []serviceCall {
	target := map[string]string{"entity_id": "openhasp." + deviceID}
	update := func(data map[string]string) []serviceCall {
		data["obj"] = objName
		return []serviceCall{{Service: "openhasp.update_object", Target: target, Data: data}}
	}

	onOff := "{{ 'ON' if is_state('" + entityID + "', 'on') else 'OFF' }}"

	switch ha.Domain(entityID) {
	case "light":
		return update(map[string]string{
			"text":     onOff,
			"bg_color": "{{ '#00FF00' if is_state('" + entityID + "', 'on') else '#FF0000' }}",
		})
	case "sensor":
		return update(map[string]string{
			"text": "{{ states('" + entityID + "') }}{{ state_attr('" + entityID + "', 'unit_of_measurement') }}",
		})
	case "binary_sensor":
		return update(map[string]string{"text": onOff})
	case "switch", "cover", "fan":
		return update(map[string]string{
			"text": onOff,
			"val":  "{{ 1 if is_state('" + entityID + "', 'on') else 0 }}",
		})
	default:
		return update(map[string]string{"text": "{{ states('" + entityID + "') }}"})
	}
}
