package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"haspd/internal/designer"
	"haspd/internal/devices"
	"haspd/internal/ha"
	"haspd/internal/logs"
	"haspd/internal/models"
	"haspd/internal/validate"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

const pagesFile = "pages.jsonl"

type Request struct {
	Objects  []designer.Object `json:"objects"`
	DeviceID string            `json:"device_id"`
	Validate *bool             `json:"validate"` // default true
	DryRun   bool              `json:"dry_run"`
}

type ValidationSummary struct {
	Passed   bool               `json:"passed"`
	Errors   []validate.Error   `json:"errors"`
	Warnings []validate.Warning `json:"warnings"`
}

type Result struct {
	Success         bool              `json:"success"`
	DeviceID        string            `json:"device_id"`
	DeviceName      string            `json:"device_name,omitempty"`
	PagesDeployed   int               `json:"pages_deployed"`
	ObjectsDeployed int               `json:"objects_deployed"`
	Validation      ValidationSummary `json:"validation"`
	DeploymentTime  string            `json:"deployment_time,omitempty"`
	Error           string            `json:"error,omitempty"`
}

// Publisher runs the deploy pipeline: validate, back up the previous
// pages file, write the new one, and ask HA to push it to the device.
type Publisher struct {
	configPath string
	ha         *ha.Client
	validator  *validate.Service
	devices    *devices.Service
	db         *gorm.DB // optional, deploy history
}

func New(configPath string, client *ha.Client, v *validate.Service, d *devices.Service, db *gorm.DB) *Publisher {
	return &Publisher{configPath: configPath, ha: client, validator: v, devices: d, db: db}
}

func (p *Publisher) Publish(ctx context.Context, req Request) Result {
	res := Result{
		DeviceID:   req.DeviceID,
		Validation: ValidationSummary{Passed: true, Errors: []validate.Error{}, Warnings: []validate.Warning{}},
	}

	runValidation := req.Validate == nil || *req.Validate
	if runValidation {
		vr := p.validator.Configuration(ctx, req.Objects, req.DeviceID, validate.DefaultOptions())
		res.Validation = ValidationSummary{Passed: vr.Passed, Errors: vr.Errors, Warnings: vr.Warnings}

		if !vr.Passed {
			res.Error = "Validation failed. Please fix errors before deploying."
			if !req.DryRun {
				p.record(req, res, "")
			}
			return res
		}
	}

	if req.DryRun {
		res.Success = res.Validation.Passed
		return res
	}

	jsonl, err := designer.Export(req.Objects)
	if err != nil {
		res.Error = err.Error()
		p.record(req, res, "")
		return res
	}
	sum := sha256.Sum256(jsonl)
	shaHex := hex.EncodeToString(sum[:])

	if err := p.writePages(jsonl); err != nil {
		res.Error = err.Error()
		p.record(req, res, shaHex)
		return res
	}

	if err := p.ha.ReloadPages(ctx); err != nil {
		res.Error = err.Error()
		p.record(req, res, shaHex)
		return res
	}
	p.ha.InvalidateStates()

	res.PagesDeployed = countPages(req.Objects)
	res.ObjectsDeployed = len(req.Objects) - res.PagesDeployed
	res.Success = true
	res.DeploymentTime = time.Now().UTC().Format(time.RFC3339)

	if dev, err := p.devices.FindDevice(ctx, req.DeviceID); err == nil && dev != nil {
		res.DeviceName = dev.Name
	}

	p.record(req, res, shaHex)
	logs.Logger.Infof("published %d objects (%d pages) to %s, sha %s",
		res.ObjectsDeployed, res.PagesDeployed, req.DeviceID, shaHex[:12])
	return res
}

// writePages backs up the previous file and rewrites it wholesale.
func (p *Publisher) writePages(jsonl []byte) error {
	if err := os.MkdirAll(p.configPath, 0755); err != nil {
		return pkgerrors.Wrap(err, "create config dir")
	}
	target := filepath.Join(p.configPath, pagesFile)

	if prev, err := os.ReadFile(target); err == nil {
		if err := os.WriteFile(target+".bak", prev, 0644); err != nil {
			logs.Logger.Warnf("backup %s: %v", target, err)
		}
	}

	if err := os.WriteFile(target, jsonl, 0644); err != nil {
		return pkgerrors.Wrap(err, "write pages file")
	}
	return nil
}

func (p *Publisher) record(req Request, res Result, sha string) {
	if p.db == nil {
		return
	}
	rec := models.DeployRecord{
		DeviceID:  req.DeviceID,
		ConfigSHA: sha,
		Pages:     res.PagesDeployed,
		Objects:   res.ObjectsDeployed,
		Success:   res.Success,
		Error:     res.Error,
	}
	if err := p.db.Create(&rec).Error; err != nil {
		logs.Logger.Warnf("deploy history: %v", err)
	}
}

func countPages(objects []designer.Object) int {
	n := 0
	for _, o := range objects {
		if o.Type == "page" {
			n++
		}
	}
	return n
}
