// Package catalog reads request and resource collections from JSON or
// YAML files. It is the ingestion boundary: everything is normalized to
// typed records before the planner sees it.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ogauthier/obsched/core/model"
)

// Catalog is one planning snapshot: the requests to place and the
// telescopes to place them on.
type Catalog struct {
	Requests  []model.Request
	Resources []model.Resource
}

type requestRecord struct {
	ID             string        `json:"id" yaml:"id"`
	Target         *model.Target `json:"target" yaml:"target"`
	Duration       string        `json:"duration" yaml:"duration"`
	Priority       float64       `json:"priority" yaml:"priority"`
	Band           string        `json:"band" yaml:"band"`
	Completion     float64       `json:"completion" yaml:"completion"`
	Earliest       string        `json:"earliest" yaml:"earliest"`
	Latest         string        `json:"latest" yaml:"latest"`
	ExclusionGroup string        `json:"exclusion_group" yaml:"exclusion_group"`
	MaxAirmass     float64       `json:"max_airmass" yaml:"max_airmass"`
}

type document struct {
	Requests  []requestRecord  `json:"requests" yaml:"requests"`
	Resources []model.Resource `json:"resources" yaml:"resources"`
}

// Load reads a catalog from a JSON or YAML file, chosen by extension.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return Decode(f, ext)
}

// Decode reads a catalog document from r in the given format ("json",
// "yaml" or "yml").
func Decode(r io.Reader, format string) (*Catalog, error) {
	var doc document
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("catalog: decode yaml: %w", err)
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("catalog: decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("catalog: unsupported format: %s", format)
	}

	cat := &Catalog{Resources: doc.Resources}
	for i, rec := range doc.Requests {
		req, err := rec.toRequest()
		if err != nil {
			return nil, fmt.Errorf("catalog: request %d: %w", i, err)
		}
		cat.Requests = append(cat.Requests, req)
	}
	return cat, nil
}

func (rec requestRecord) toRequest() (model.Request, error) {
	req := model.Request{
		ID:             rec.ID,
		Target:         rec.Target,
		Priority:       rec.Priority,
		Band:           rec.Band,
		Completion:     rec.Completion,
		ExclusionGroup: rec.ExclusionGroup,
		MaxAirmass:     rec.MaxAirmass,
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if rec.Duration == "" {
		return req, fmt.Errorf("missing duration")
	}
	d, err := time.ParseDuration(rec.Duration)
	if err != nil {
		return req, fmt.Errorf("duration: %w", err)
	}
	req.Duration = d
	if rec.Earliest != "" {
		t, err := time.Parse(time.RFC3339, rec.Earliest)
		if err != nil {
			return req, fmt.Errorf("earliest: %w", err)
		}
		req.Earliest = t
	}
	if rec.Latest != "" {
		t, err := time.Parse(time.RFC3339, rec.Latest)
		if err != nil {
			return req, fmt.Errorf("latest: %w", err)
		}
		req.Latest = t
	}
	return req, nil
}
