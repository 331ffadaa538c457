package sales

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Customer is a CRM customer record.
type Customer struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Opportunity is a sales opportunity to be recorded.
type Opportunity struct {
	ID          string `json:"id,omitempty"`
	CustomerID  string `json:"customer_id"`
	ProductName string `json:"product_name"`
	State       string `json:"state"`
	SaleValue   int64  `json:"sale_value"`
}

// CustomerDirectory finds customers by phone number.
type CustomerDirectory interface {
	FindByPhone(ctx context.Context, phone string) (*Customer, error)
}

// OpportunityStore records sales opportunities.
type OpportunityStore interface {
	Create(ctx context.Context, o Opportunity) (*Opportunity, error)
}

// StubCustomerID is returned by StubDirectory for every lookup.
const StubCustomerID = "1234"

// StubDirectory resolves every phone number to StubCustomerID.
type StubDirectory struct{}

// FindByPhone implements CustomerDirectory.
func (StubDirectory) FindByPhone(_ context.Context, phone string) (*Customer, error) {
	return &Customer{ID: StubCustomerID}, nil
}

// MemoryOpportunityStore keeps opportunities in memory.
type MemoryOpportunityStore struct {
	mu    sync.Mutex
	items []Opportunity
}

// NewMemoryOpportunityStore creates an empty store.
func NewMemoryOpportunityStore() *MemoryOpportunityStore {
	return &MemoryOpportunityStore{}
}

// Create implements OpportunityStore.
func (s *MemoryOpportunityStore) Create(_ context.Context, o Opportunity) (*Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.ID = uuid.NewString()
	s.items = append(s.items, o)

	return &o, nil
}

// List returns the recorded opportunities in creation order.
func (s *MemoryOpportunityStore) List() []Opportunity {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Opportunity, len(s.items))
	copy(out, s.items)

	return out
}
