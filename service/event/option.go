package event

import (
	"github.com/adam-vault/adam-contract-core-sub000/service/messaging/fs"
	"github.com/adam-vault/adam-contract-core-sub000/service/messaging/memory"
)

// Option customises the event service.
type Option func(s *Service)

// WithNewFsQueueConfig supplies the per-queue configuration factory for the
// fs vendor; name is the payload type the queue carries.
func WithNewFsQueueConfig(newConfig func(name string) fs.QueueConfig) Option {
	return func(s *Service) {
		s.fsNewQueueConfig = newConfig
	}
}

// WithNewMemoryQueueConfig supplies the per-queue configuration factory for
// the memory vendor.
func WithNewMemoryQueueConfig(newQueue func(name string) memory.Config) Option {
	return func(s *Service) {
		s.memNewQueueConfig = newQueue
	}
}
