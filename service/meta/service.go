// Package meta loads configuration documents from any storage scheme the afs
// service understands (file, mem, embed, s3, gs). Relative locations resolve
// against a base URL and ${env.KEY} expressions expand before the fetch.
package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Service is the document loader.
type Service struct {
	fs        afs.Service
	baseURL   string
	fsOptions []storage.Option
}

// New creates a loader; baseURL may be empty when callers always pass
// absolute URLs.
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	return &Service{fs: fs, baseURL: baseURL, fsOptions: options}
}

// Exists reports whether the document at location exists.
func (s *Service) Exists(ctx context.Context, location string) (bool, error) {
	return s.fs.Exists(ctx, s.resolve(location), s.fsOptions...)
}

// Load fetches the document at location and decodes it into target based on
// the extension; .json decodes as JSON, everything else as YAML.
func (s *Service) Load(ctx context.Context, location string, target interface{}) error {
	URL := s.resolve(location)
	data, err := s.fs.DownloadWithURL(ctx, URL, s.fsOptions...)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", URL, err)
	}
	if strings.EqualFold(path.Ext(URL), ".json") {
		if err = json.Unmarshal(data, target); err != nil {
			return fmt.Errorf("failed to decode %s: %w", URL, err)
		}
		return nil
	}
	if err = yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", URL, err)
	}
	return nil
}

// Delete removes the document at location.
func (s *Service) Delete(ctx context.Context, location string) error {
	return s.fs.Delete(ctx, s.resolve(location), s.fsOptions...)
}

func (s *Service) resolve(location string) string {
	location = expandEnvExpr(location)
	if s.baseURL == "" || !url.IsRelative(location) {
		return location
	}
	return url.Join(s.baseURL, location)
}
