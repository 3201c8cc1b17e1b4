package devices

import (
	"context"
	"fmt"
	"strings"

	"haspd/internal/ha"
	"haspd/internal/logs"

	pkgerrors "github.com/pkg/errors"
)

// Device is an openHASP panel discovered through HA's device registry.
type Device struct {
	DeviceID     string      `json:"device_id"`
	Name         string      `json:"name"`
	Model        string      `json:"model"`
	ModelKey     string      `json:"model_key,omitempty"`
	Manufacturer string      `json:"manufacturer,omitempty"`
	Resolution   *Resolution `json:"resolution,omitempty"`
	Online       bool        `json:"online"`
	Identifiers  [][]string  `json:"identifiers,omitempty"`
}

// Service discovers openHASP devices and answers entity-existence checks.
type Service struct {
	ha *ha.Client
}

func NewService(client *ha.Client) *Service { return &Service{ha: client} }

// OpenhaspDevices lists panels from the registry, enriched with a
// resolution from the model table and an online flag from status entities.
func (s *Service) OpenhaspDevices(ctx context.Context) ([]Device, error) {
	registry, err := s.ha.DeviceRegistry(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "device discovery")
	}

	var states []ha.Entity
	states, err = s.ha.States(ctx)
	if err != nil {
		// registry without states still yields a useful device list
		logs.Logger.Warnf("device online check unavailable: %v", err)
		states = nil
	}

	out := []Device{}
	for _, reg := range registry {
		if !isOpenhasp(reg) {
			continue
		}
		out = append(out, s.enrich(reg, states))
	}
	return out, nil
}

// FindDevice returns a single device by its registry id.
func (s *Service) FindDevice(ctx context.Context, deviceID string) (*Device, error) {
	devs, err := s.OpenhaspDevices(ctx)
	if err != nil {
		return nil, err
	}
	for i := range devs {
		if devs[i].DeviceID == deviceID {
			return &devs[i], nil
		}
	}
	return nil, nil
}

func isOpenhasp(reg ha.RegistryDevice) bool {
	for _, entry := range reg.ConfigEntries {
		if strings.Contains(strings.ToLower(entry), "openhasp") {
			return true
		}
	}
	for _, ident := range reg.Identifiers {
		if len(ident) > 0 && strings.Contains(strings.ToLower(ident[0]), "openhasp") {
			return true
		}
	}
	return false
}

func (s *Service) enrich(reg ha.RegistryDevice, states []ha.Entity) Device {
	name := reg.NameByUser
	if name == "" {
		name = reg.Name
	}
	if name == "" {
		name = "Unknown"
	}
	model := strings.ToLower(reg.Model)

	d := Device{
		DeviceID:     reg.ID,
		Name:         name,
		Model:        model,
		Manufacturer: reg.Manufacturer,
		Identifiers:  reg.Identifiers,
		Online:       deviceOnline(states),
	}
	if d.Model == "" {
		d.Model = "Unknown"
	}
	if key, ok := MatchModel(model); ok {
		res, _ := GetResolution(key)
		d.ModelKey = key
		d.Resolution = &res
	}
	return d
}

// deviceOnline looks for an openHASP status entity. With no status entity
// (or no state dump at all) the device is assumed online.
func deviceOnline(states []ha.Entity) bool {
	for _, e := range states {
		id := strings.ToLower(e.EntityID)
		if strings.Contains(id, "openhasp") && strings.Contains(id, "status") {
			switch strings.ToLower(e.State) {
			case "on", "online", "connected":
				return true
			default:
				return false
			}
		}
	}
	return true
}

// ValidateEntityExists checks a single entity against HA.
// Returns (exists, human-readable reason when not).
func (s *Service) ValidateEntityExists(ctx context.Context, entityID string) (bool, string) {
	_, err := s.ha.EntityState(ctx, entityID)
	if err == nil {
		return true, ""
	}
	if pkgerrors.Is(err, ha.ErrEntityNotFound) {
		return false, fmt.Sprintf("entity '%s' not found in Home Assistant", entityID)
	}
	return false, fmt.Sprintf("error validating entity: %v", err)
}
