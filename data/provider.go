package data

import (
	"context"
	"fmt"
	"sync"

	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/interfaces"
)

// Provider merges the streams of one or more data sources into a single
// ordered channel for the strategy runner. The AllLive flag on each update
// turns true once every source has caught up to real time; historical-only
// runs never set it.
type ProviderUpdate struct {
	Bar     interfaces.DataUpdate
	AllLive bool
}

type Provider struct {
	mu      sync.Mutex
	sources map[string]interfaces.DataSource
	isLive  map[string]bool
}

func NewProvider() *Provider {
	return &Provider{
		sources: make(map[string]interfaces.DataSource),
		isLive:  make(map[string]bool),
	}
}

// AddDataSource registers a source. Source ids must be unique.
func (p *Provider) AddDataSource(source interfaces.DataSource) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.sources[source.SourceID()]; exists {
		return fmt.Errorf("data source %s already exists", source.SourceID())
	}
	p.sources[source.SourceID()] = source
	p.isLive[source.SourceID()] = false
	return nil
}

// Source returns a registered data source.
func (p *Provider) Source(sourceID string) interfaces.DataSource {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sources[sourceID]
}

// Stream connects every source and fans their updates into the returned
// channel. The channel closes when every source is done or ctx is canceled.
func (p *Provider) Stream(ctx context.Context) (<-chan ProviderUpdate, error) {
	p.mu.Lock()
	sources := make([]interfaces.DataSource, 0, len(p.sources))
	for _, source := range p.sources {
		sources = append(sources, source)
	}
	p.mu.Unlock()

	if len(sources) == 0 {
		return nil, fmt.Errorf("no data sources registered")
	}

	for _, source := range sources {
		if err := source.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connecting data source %s: %w", source.SourceID(), err)
		}
	}

	raw := make(chan interfaces.DataUpdate, 64)
	var wg sync.WaitGroup
	for _, source := range sources {
		wg.Add(1)
		go func(source interfaces.DataSource) {
			defer wg.Done()
			if err := source.Read(ctx, raw); err != nil && ctx.Err() == nil {
				helpers.Logger.Errorln(fmt.Sprintf("data source %s stopped: %v", source.SourceID(), err))
			}
			if err := source.Disconnect(); err != nil {
				helpers.Logger.Warnln(fmt.Sprintf("disconnecting data source %s: %v", source.SourceID(), err))
			}
		}(source)
	}
	go func() {
		wg.Wait()
		close(raw)
	}()

	out := make(chan ProviderUpdate)
	go func() {
		defer close(out)
		for update := range raw {
			if update.Bar != nil {
				p.mu.Lock()
				p.isLive[update.Bar.SourceID] = update.Live
				p.mu.Unlock()
			}
			select {
			case out <- ProviderUpdate{Bar: update, AllLive: p.allLive()}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (p *Provider) allLive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, live := range p.isLive {
		if !live {
			return false
		}
	}
	return true
}
