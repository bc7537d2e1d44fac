// Package mocks provides centralized mock implementations for testing.
//
// Each mock has function fields for overriding individual methods and a
// working in-memory default, so most tests need no setup beyond the
// constructor. Mocks built on testify/mock are prefixed with Testify.
//
// Usage:
//
//	users := mocks.NewMockUserStore()
//	users.GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
//		return nil, store.ErrStoreUnavailable
//	}
package mocks
