package importsvc

import (
	"os"
	"path/filepath"
	"strings"

	"haspd/internal/designer"

	pkgerrors "github.com/pkg/errors"
)

// Service reads existing openHASP pages files from the HA config dir and
// turns them back into editable layouts.
type Service struct {
	configPath string
}

func NewService(configPath string) *Service { return &Service{configPath: configPath} }

// ListAvailable returns the *.jsonl filenames in the config dir.
func (s *Service) ListAvailable() ([]string, error) {
	entries, err := os.ReadDir(s.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, pkgerrors.Wrap(err, "read config dir")
	}
	out := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// ImportFile parses one pages file into a layout, nil when absent.
func (s *Service) ImportFile(filename string) (*designer.LayoutDoc, error) {
	// filename comes from the URL, keep it inside the config dir
	if filepath.Base(filename) != filename {
		return nil, pkgerrors.New("invalid filename")
	}
	content, err := os.ReadFile(filepath.Join(s.configPath, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrapf(err, "read %s", filename)
	}

	records := designer.Parse(string(content))
	objects := designer.ObjectsFromRecords(records)
	if len(objects) == 0 {
		return nil, nil
	}

	name := strings.TrimSuffix(filename, ".jsonl")
	return &designer.LayoutDoc{
		ID:          name,
		Name:        "Imported from " + filename,
		Description: "Imported configuration from " + filename,
		Pages:       designer.SplitPages(objects),
	}, nil
}

// ImportForDevice tries the filename patterns a device's pages file may
// live under, most specific first.
func (s *Service) ImportForDevice(deviceID string) (*designer.LayoutDoc, string, error) {
	for _, filename := range []string{
		deviceID + ".jsonl",
		"pages_" + deviceID + ".jsonl",
		"pages.jsonl",
	} {
		layout, err := s.ImportFile(filename)
		if err != nil {
			return nil, "", err
		}
		if layout != nil {
			return layout, filename, nil
		}
	}
	return nil, "", nil
}
