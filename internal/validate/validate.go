package validate

import (
	"context"
	"fmt"

	"haspd/internal/designer"
	"haspd/internal/devices"
	"haspd/internal/logs"
)

// Finding types.
const (
	TypeEntity     = "entity"
	TypeCoordinate = "coordinate"
	TypeObjectID   = "object_id"
	TypeDevice     = "device"
	TypeOverlap    = "overlap"
)

type Error struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	ObjectID *int   `json:"object_id,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
	PageID   *int   `json:"page_id,omitempty"`
}

type Warning struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	ObjectID *int   `json:"object_id,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
}

// Result of a validation pass. Errors block a publish, warnings do not.
type Result struct {
	Passed   bool      `json:"passed"`
	Errors   []Error   `json:"errors"`
	Warnings []Warning `json:"warnings"`
}

type Options struct {
	ValidateEntities bool
	CheckBounds      bool
	VerifyDevice     bool
	CheckObjectIDs   bool
	CheckOverlaps    bool
}

func DefaultOptions() Options {
	return Options{
		ValidateEntities: true,
		CheckBounds:      true,
		VerifyDevice:     true,
		CheckObjectIDs:   true,
		CheckOverlaps:    true,
	}
}

// EntityChecker answers whether an entity currently exists in HA.
type EntityChecker interface {
	ValidateEntityExists(ctx context.Context, entityID string) (bool, string)
}

// DeviceFinder resolves a device id to a discovered panel, nil when absent.
type DeviceFinder interface {
	FindDevice(ctx context.Context, deviceID string) (*devices.Device, error)
}

type Service struct {
	entities EntityChecker
	devices  DeviceFinder
}

func NewService(entities EntityChecker, finder DeviceFinder) *Service {
	return &Service{entities: entities, devices: finder}
}

// Configuration runs all enabled checks, in order: device, object ids,
// entities, bounds, overlaps. A failed device check short-circuits the
// rest, there is nothing meaningful to validate against.
func (s *Service) Configuration(ctx context.Context, objects []designer.Object, deviceID string, opts Options) Result {
	res := Result{Errors: []Error{}, Warnings: []Warning{}}

	var resolution *devices.Resolution
	if opts.VerifyDevice {
		devErr, dev := s.verifyDevice(ctx, deviceID)
		if devErr != nil {
			res.Errors = append(res.Errors, *devErr)
			res.Passed = false
			return res
		}
		if dev != nil {
			resolution = dev.Resolution
		}
	}

	if opts.CheckObjectIDs {
		res.Errors = append(res.Errors, duplicateIDs(objects)...)
	}
	if opts.ValidateEntities {
		res.Errors = append(res.Errors, s.missingEntities(ctx, objects)...)
	}
	if opts.CheckBounds && resolution != nil {
		res.Errors = append(res.Errors, outOfBounds(objects, *resolution)...)
	}
	if opts.CheckOverlaps {
		res.Warnings = append(res.Warnings, overlaps(objects)...)
	}

	res.Passed = len(res.Errors) == 0
	return res
}

func (s *Service) verifyDevice(ctx context.Context, deviceID string) (*Error, *devices.Device) {
	dev, err := s.devices.FindDevice(ctx, deviceID)
	if err != nil {
		logs.Logger.Errorf("validate device %s: %v", deviceID, err)
		return &Error{Type: TypeDevice, Message: fmt.Sprintf("failed to validate device: %v", err)}, nil
	}
	if dev == nil {
		return &Error{Type: TypeDevice, Message: fmt.Sprintf("device '%s' not found in Home Assistant", deviceID)}, nil
	}
	if !dev.Online {
		return &Error{Type: TypeDevice, Message: fmt.Sprintf("device '%s' is offline", dev.Name)}, nil
	}
	return nil, dev
}

func duplicateIDs(objects []designer.Object) []Error {
	var errs []Error
	seen := map[int]struct{}{}
	for _, o := range objects {
		o := o
		if _, dup := seen[o.ID]; dup {
			errs = append(errs, Error{
				Type:     TypeObjectID,
				Message:  fmt.Sprintf("duplicate object ID: %d", o.ID),
				ObjectID: &o.ID,
			})
			continue
		}
		seen[o.ID] = struct{}{}
	}
	return errs
}

// missingEntities checks each distinct entity once and flags every object
// referencing a missing one.
func (s *Service) missingEntities(ctx context.Context, objects []designer.Object) []Error {
	refs := map[string][]int{}
	for _, o := range objects {
		if o.EntityID != "" {
			refs[o.EntityID] = append(refs[o.EntityID], o.ID)
		}
	}

	var errs []Error
	for entityID, objIDs := range refs {
		exists, _ := s.entities.ValidateEntityExists(ctx, entityID)
		if exists {
			continue
		}
		for _, objID := range objIDs {
			objID := objID
			errs = append(errs, Error{
				Type:     TypeEntity,
				Message:  fmt.Sprintf("entity '%s' does not exist in Home Assistant", entityID),
				ObjectID: &objID,
				EntityID: entityID,
			})
		}
	}
	return errs
}

func outOfBounds(objects []designer.Object, res devices.Resolution) []Error {
	var errs []Error
	for _, o := range objects {
		o := o
		if o.Type == "page" {
			continue
		}
		ok, reason := devices.ValidateCoordinates(o.X, o.Y, o.Width, o.Height, res.Width, res.Height)
		if !ok {
			errs = append(errs, Error{
				Type:     TypeCoordinate,
				Message:  reason,
				ObjectID: &o.ID,
			})
		}
	}
	return errs
}

// overlaps flags every same-page pair of intersecting bounding boxes.
func overlaps(objects []designer.Object) []Warning {
	byPage := map[int][]designer.Object{}
	for _, o := range objects {
		if o.Type == "page" {
			continue
		}
		byPage[o.Page] = append(byPage[o.Page], o)
	}

	var warns []Warning
	for page, objs := range byPage {
		for i := 0; i < len(objs); i++ {
			for j := i + 1; j < len(objs); j++ {
				if rectanglesOverlap(objs[i], objs[j]) {
					id := objs[i].ID
					warns = append(warns, Warning{
						Type:     TypeOverlap,
						Message:  fmt.Sprintf("objects %d and %d overlap on page %d", objs[i].ID, objs[j].ID, page),
						ObjectID: &id,
					})
				}
			}
		}
	}
	return warns
}

func rectanglesOverlap(a, b designer.Object) bool {
	return !(a.X+a.Width <= b.X ||
		b.X+b.Width <= a.X ||
		a.Y+a.Height <= b.Y ||
		b.Y+b.Height <= a.Y)
}
