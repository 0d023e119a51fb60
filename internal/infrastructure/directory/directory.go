// Package directory resolves campaigns and companies from their upstream
// stores. Company lookup walks an ordered chain so an enriched primary
// store can shadow a legacy one.
package directory

import (
	"context"
	"sync"

	"CampaignMonitor/internal/domain"
	"CampaignMonitor/internal/ports"
)

// CompanyStore is one backend in the lookup chain.
type CompanyStore interface {
	GetCompany(ctx context.Context, id string) (*domain.Company, error)
}

// ChainDirectory tries each store in order and returns the first hit.
// A miss in every store resolves to nil without error; only transport
// failures propagate.
type ChainDirectory struct {
	stores []CompanyStore
}

var _ ports.CompanyDirectory = (*ChainDirectory)(nil)

// NewChainDirectory builds the lookup chain, primary store first.
func NewChainDirectory(stores ...CompanyStore) *ChainDirectory {
	return &ChainDirectory{stores: stores}
}

// Resolve walks the chain. Records from a different organization are
// treated as absent so tenants never see each other's companies.
func (d *ChainDirectory) Resolve(ctx context.Context, companyID, organizationID string) (*domain.Company, error) {
	for _, store := range d.stores {
		company, err := store.GetCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}
		if company == nil {
			continue
		}
		if organizationID != "" && company.OrganizationID != organizationID {
			continue
		}
		return company, nil
	}
	return nil, nil
}

// StaticCompanyStore serves a fixed company set. It backs tests and
// DSN-less runs where no upstream directory is reachable.
type StaticCompanyStore struct {
	mu        sync.RWMutex
	companies map[string]domain.Company
}

var _ CompanyStore = (*StaticCompanyStore)(nil)

// NewStaticCompanyStore builds a store from the given records.
func NewStaticCompanyStore(companies ...domain.Company) *StaticCompanyStore {
	store := &StaticCompanyStore{companies: map[string]domain.Company{}}
	for _, company := range companies {
		store.companies[company.ID] = company
	}
	return store
}

// Put adds or replaces one record.
func (s *StaticCompanyStore) Put(company domain.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[company.ID] = company
}

// GetCompany returns a record copy, nil when absent.
func (s *StaticCompanyStore) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	company, ok := s.companies[id]
	if !ok {
		return nil, nil
	}
	return &company, nil
}

// StaticCampaignStore serves a fixed campaign set for tests and local runs.
type StaticCampaignStore struct {
	mu        sync.RWMutex
	campaigns map[string]domain.Campaign
}

var _ ports.CampaignStore = (*StaticCampaignStore)(nil)

// NewStaticCampaignStore builds a store from the given records.
func NewStaticCampaignStore(campaigns ...domain.Campaign) *StaticCampaignStore {
	store := &StaticCampaignStore{campaigns: map[string]domain.Campaign{}}
	for _, campaign := range campaigns {
		store.campaigns[campaign.ID] = campaign
	}
	return store
}

// Put adds or replaces one record.
func (s *StaticCampaignStore) Put(campaign domain.Campaign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns[campaign.ID] = campaign
}

// GetCampaign returns a record copy, nil when absent.
func (s *StaticCampaignStore) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	campaign, ok := s.campaigns[id]
	if !ok {
		return nil, nil
	}
	return &campaign, nil
}
