// Package fs provides a filesystem-backed policy configuration store. Configs
// are persisted as JSON documents; hand-authored YAML documents load as well,
// with kind-specific parameters converted to their JSON wire form.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/adam-vault/adam-contract-core-sub000/internal/yml"
	"github.com/adam-vault/adam-contract-core-sub000/model/policy"
	"github.com/adam-vault/adam-contract-core-sub000/service/dao"
	"github.com/adam-vault/adam-contract-core-sub000/service/dao/criteria"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

var extensions = []string{".json", ".yaml", ".yml"}

// Service implements filesystem-based policy configuration storage.
type Service struct {
	baseURL string
	fs      afs.Service
	mu      sync.RWMutex
}

// New creates a store rooted at baseURL; any afs scheme works.
func New(fs afs.Service, baseURL string) *Service {
	return &Service{fs: fs, baseURL: baseURL}
}

// Save persists a configuration as JSON.
func (s *Service) Save(ctx context.Context, config *policy.Config) error {
	if config == nil {
		return dao.ErrNilEntity
	}
	if config.ID == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal policy %s: %w", config.ID, err)
	}
	URL := url.Join(s.baseURL, config.ID+".json")
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save policy to %s: %w", URL, err)
	}
	return nil
}

// Load retrieves a configuration by id, trying the known extensions.
func (s *Service) Load(ctx context.Context, id string) (*policy.Config, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ext := range extensions {
		URL := url.Join(s.baseURL, id+ext)
		if ok, _ := s.fs.Exists(ctx, URL); !ok {
			continue
		}
		return s.load(ctx, URL)
	}
	return nil, nil
}

// Delete removes a stored configuration.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := false
	for _, ext := range extensions {
		URL := url.Join(s.baseURL, id+ext)
		if ok, _ := s.fs.Exists(ctx, URL); !ok {
			continue
		}
		if err := s.fs.Delete(ctx, URL); err != nil {
			return err
		}
		deleted = true
	}
	if !deleted {
		return dao.ErrNotFound
	}
	return nil
}

// List returns every stored configuration, optionally filtered by Kind.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*policy.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies at %s: %w", s.baseURL, err)
	}
	var ret []*policy.Config
	for _, object := range objects {
		if object.IsDir() || !knownExtension(object.URL()) {
			continue
		}
		config, err := s.load(ctx, object.URL())
		if err != nil {
			return nil, err
		}
		if !criteria.FilterByKind(string(config.Kind), parameters) {
			continue
		}
		ret = append(ret, config)
	}
	return ret, nil
}

func (s *Service) load(ctx context.Context, URL string) (*policy.Config, error) {
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy from %s: %w", URL, err)
	}
	config := &policy.Config{}
	if strings.EqualFold(path.Ext(URL), ".json") {
		if err = json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to decode policy %s: %w", URL, err)
		}
		return config, nil
	}
	// yaml documents pass through a JSON round trip so that kind parameters
	// land in their raw JSON form
	var node yaml.Node
	if err = yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to decode policy %s: %w", URL, err)
	}
	root := &node
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		root = node.Content[0]
	}
	encoded, err := json.Marshal((*yml.Node)(root).Interface())
	if err != nil {
		return nil, fmt.Errorf("failed to convert policy %s: %w", URL, err)
	}
	if err = json.Unmarshal(encoded, config); err != nil {
		return nil, fmt.Errorf("failed to decode policy %s: %w", URL, err)
	}
	return config, nil
}

func knownExtension(URL string) bool {
	ext := strings.ToLower(path.Ext(URL))
	for _, candidate := range extensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

var _ dao.Service[string, policy.Config] = (*Service)(nil)
