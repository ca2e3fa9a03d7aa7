package core

import (
	"context"
	"sort"

	"innkeeper/internal/document"
	"innkeeper/pkg/domain"
)

// CustomerRegistry manages the customers document.
type CustomerRegistry struct {
	store *document.Store[domain.Customer]
	instrumentation
}

// NewCustomerRegistry binds a registry to the customers document on backend.
func NewCustomerRegistry(backend document.Backend, opts ...Option) *CustomerRegistry {
	cfg := buildOptions(CustomersDocument, opts)
	return &CustomerRegistry{
		store:           document.New[domain.Customer](cfg.documentName, backend, cfg.documentOpts...),
		instrumentation: newInstrumentation(cfg),
	}
}

// Store exposes the underlying document store.
func (r *CustomerRegistry) Store() *document.Store[domain.Customer] { return r.store }

// CreateCustomer inserts a new customer.
func (r *CustomerRegistry) CreateCustomer(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	if err := requireID(domain.EntityCustomer, customer.ID); err != nil {
		return domain.Customer{}, err
	}
	err := r.run(ctx, "create_customer", func(ctx context.Context) error {
		return r.store.Update(ctx, func(records document.Records[domain.Customer]) error {
			if _, exists := records[customer.ID]; exists {
				return domain.NewRecordError(domain.EntityCustomer, customer.ID, domain.ErrAlreadyExists)
			}
			if err := r.evaluate(ctx, domain.Change{Entity: domain.EntityCustomer, Action: domain.ActionCreate, After: customer}); err != nil {
				return err
			}
			records[customer.ID] = customer
			return nil
		})
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

// DeleteCustomer removes a customer.
func (r *CustomerRegistry) DeleteCustomer(ctx context.Context, id string) error {
	return r.run(ctx, "delete_customer", func(ctx context.Context) error {
		return r.store.Update(ctx, func(records document.Records[domain.Customer]) error {
			current, ok := records[id]
			if !ok {
				return domain.NewRecordError(domain.EntityCustomer, id, domain.ErrNotFound)
			}
			current.ID = id
			if err := r.evaluate(ctx, domain.Change{Entity: domain.EntityCustomer, Action: domain.ActionDelete, Before: current}); err != nil {
				return err
			}
			delete(records, id)
			return nil
		})
	})
}

// FindCustomer returns the customer stored under id and whether it exists.
func (r *CustomerRegistry) FindCustomer(ctx context.Context, id string) (domain.Customer, bool, error) {
	var (
		customer domain.Customer
		found    bool
	)
	err := r.run(ctx, "find_customer", func(ctx context.Context) error {
		var err error
		customer, found, err = r.store.Get(ctx, id)
		return err
	})
	if err != nil || !found {
		return domain.Customer{}, false, err
	}
	customer.ID = id
	return customer, true, nil
}

// ListCustomers returns every customer ordered by id.
func (r *CustomerRegistry) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var records document.Records[domain.Customer]
	err := r.run(ctx, "list_customers", func(ctx context.Context) error {
		var err error
		records, err = r.store.Load(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Customer, 0, len(records))
	for id, customer := range records {
		customer.ID = id
		out = append(out, customer)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ModifyCustomer applies patch to an existing customer.
func (r *CustomerRegistry) ModifyCustomer(ctx context.Context, id string, patch domain.CustomerPatch) (domain.Customer, error) {
	var updated domain.Customer
	err := r.run(ctx, "modify_customer", func(ctx context.Context) error {
		return r.store.Update(ctx, func(records document.Records[domain.Customer]) error {
			before, ok := records[id]
			if !ok {
				return domain.NewRecordError(domain.EntityCustomer, id, domain.ErrNotFound)
			}
			before.ID = id
			after := before
			patch.Apply(&after)
			if err := r.evaluate(ctx, domain.Change{Entity: domain.EntityCustomer, Action: domain.ActionUpdate, Before: before, After: after}); err != nil {
				return err
			}
			records[id] = after
			updated = after
			return nil
		})
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return updated, nil
}

// requireCustomerTx fails unless id names an existing customer.
func (r *CustomerRegistry) requireCustomerTx(tx *document.Tx, id string) error {
	records, err := document.Read(tx, r.store)
	if err != nil {
		return err
	}
	if _, ok := records[id]; !ok {
		return domain.NewRecordError(domain.EntityCustomer, id, domain.ErrNotFound)
	}
	return nil
}
