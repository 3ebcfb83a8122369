// Package memory provides an in-memory team roster.
package memory

import (
	"context"
	"strings"
	"sync"
)

type Service struct {
	mu    sync.RWMutex
	teams map[string]map[string]bool
}

// New creates an empty roster.
func New() *Service {
	return &Service{teams: make(map[string]map[string]bool)}
}

// AddMember adds address to a team, creating the team when needed.
func (s *Service) AddMember(teamID, address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[teamID]
	if !ok {
		team = make(map[string]bool)
		s.teams[teamID] = team
	}
	team[strings.ToLower(address)] = true
}

// RemoveMember removes address from a team.
func (s *Service) RemoveMember(teamID, address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.teams[teamID], strings.ToLower(address))
}

// IsMember reports current membership.
func (s *Service) IsMember(ctx context.Context, teamID, address string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.teams[teamID][strings.ToLower(address)], nil
}
