// Package feed implements the channel sources the crawler fetches from:
// publication RSS feeds and Google News search queries.
package feed

import (
	"fmt"

	"CampaignMonitor/internal/domain"
	"CampaignMonitor/internal/ports"
)

// Registry keeps a mapping from channel types to their source
// implementations.
type Registry struct {
	sources map[domain.ChannelType]ports.ChannelSource
}

var _ ports.SourceResolver = (*Registry)(nil)

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[domain.ChannelType]ports.ChannelSource{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(source ports.ChannelSource) {
	if r.sources == nil {
		r.sources = map[domain.ChannelType]ports.ChannelSource{}
	}
	r.sources[source.Type()] = source
}

// Resolve returns a source by channel type or an error if it is absent.
func (r *Registry) Resolve(channelType domain.ChannelType) (ports.ChannelSource, error) {
	if source, ok := r.sources[channelType]; ok {
		return source, nil
	}
	return nil, fmt.Errorf("no source registered for channel type %s", channelType)
}
