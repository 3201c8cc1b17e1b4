package designer

import (
	"bytes"
	"encoding/json"
	"strings"

	"haspd/internal/logs"
)

// Export serializes designer objects to the openHASP pages format: one
// JSON object per line. The output always replaces the whole file, there
// is no incremental update on the wire.
func Export(objects []Object) ([]byte, error) {
	var buf bytes.Buffer
	for _, o := range objects {
		line, err := json.Marshal(ToHasp(o))
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Parse reads JSONL content into raw records. Blank lines, #-comments and
// malformed lines are skipped; malformed lines are logged, not fatal —
// hand-edited pages files are common in the wild.
func Parse(content string) []map[string]any {
	var records []map[string]any
	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logs.Logger.Warnf("jsonl line %d: skipping invalid json: %v", i+1, err)
			continue
		}
		records = append(records, rec)
	}
	return records
}

// ObjectsFromRecords converts wire records into designer objects,
// dropping pages and comment records.
func ObjectsFromRecords(records []map[string]any) []Object {
	out := make([]Object, 0, len(records))
	for _, rec := range records {
		if _, isComment := rec["comment"]; isComment {
			continue
		}
		if o, ok := FromHasp(rec); ok {
			out = append(out, o)
		}
	}
	return out
}

type Metadata struct {
	ProjectName string `json:"project_name"`
	PageSize    string `json:"page_size"`
}

// ExtractMetadata reads the designer's comment record, when present.
func ExtractMetadata(records []map[string]any) Metadata {
	for _, rec := range records {
		_, hasComment := rec["comment"]
		_, hasName := rec["project_name"]
		if hasComment && hasName {
			m := Metadata{
				ProjectName: getString(rec, "project_name"),
				PageSize:    getString(rec, "page_size"),
			}
			if m.ProjectName == "" {
				m.ProjectName = "Imported Config"
			}
			if m.PageSize == "" {
				m.PageSize = "large_portrait"
			}
			return m
		}
	}
	return Metadata{ProjectName: "Imported Config", PageSize: "large_portrait"}
}

// Merge appends imported records to existing ones, remapping imported ids
// past the current maximum so nothing collides. Comment records from the
// import are dropped. Returns the merged list and old→new id mapping.
func Merge(existing, imported []map[string]any) ([]map[string]any, map[int]int) {
	maxID := 0
	for _, rec := range existing {
		if id := getInt(rec, "id", 0); id > maxID {
			maxID = id
		}
	}

	idMap := map[int]int{}
	merged := make([]map[string]any, 0, len(existing)+len(imported))
	merged = append(merged, existing...)

	for _, rec := range imported {
		if _, isComment := rec["comment"]; isComment {
			continue
		}
		cp := make(map[string]any, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		if _, ok := rec["id"]; ok {
			old := getInt(rec, "id", 0)
			maxID++
			idMap[old] = maxID
			cp["id"] = maxID
		}
		merged = append(merged, cp)
	}
	return merged, idMap
}

type ConfigStats struct {
	Pages    int `json:"pages"`
	Objects  int `json:"objects"`
	Entities int `json:"entities"`
}

// Stats summarizes a configuration: page records, non-page objects, and
// distinct referenced entities. Comment records are metadata, not objects.
func Stats(records []map[string]any) ConfigStats {
	var s ConfigStats
	entities := map[string]struct{}{}
	for _, rec := range records {
		if _, isComment := rec["comment"]; isComment {
			continue
		}
		if getString(rec, "obj") == "page" {
			s.Pages++
		} else {
			s.Objects++
		}
		if e := getString(rec, "entity"); e != "" {
			entities[e] = struct{}{}
		} else if e := getString(rec, "entity_id"); e != "" {
			entities[e] = struct{}{}
		}
	}
	s.Entities = len(entities)
	return s
}
