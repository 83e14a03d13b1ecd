package contract

import (
	"context"

	"github.com/huangsam/bizcache/schema"
	"github.com/stretchr/testify/mock"
)

// MockAdapter is a mock implementation of Adapter for testing.
type MockAdapter struct {
	mock.Mock
}

var _ Adapter = &MockAdapter{} // Compile-time check

// Load implements the Adapter interface.
func (m *MockAdapter) Load(ctx context.Context) ([]schema.Record, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.Record)
	return records, args.Error(1)
}

// Create implements the Adapter interface.
func (m *MockAdapter) Create(ctx context.Context, current []schema.Record, data schema.Record) (schema.Record, error) {
	args := m.Called(ctx, current, data)
	record, _ := args.Get(0).(schema.Record)
	return record, args.Error(1)
}

// Update implements the Adapter interface.
func (m *MockAdapter) Update(ctx context.Context, current []schema.Record, id string, partial schema.Record) (schema.Record, error) {
	args := m.Called(ctx, current, id, partial)
	record, _ := args.Get(0).(schema.Record)
	return record, args.Error(1)
}

// Delete implements the Adapter interface.
func (m *MockAdapter) Delete(ctx context.Context, current []schema.Record, id string) error {
	args := m.Called(ctx, current, id)
	return args.Error(0)
}

// MockTokenSource is a mock implementation of TokenSource for testing.
type MockTokenSource struct {
	mock.Mock
}

var _ TokenSource = &MockTokenSource{} // Compile-time check

// Token implements the TokenSource interface.
func (m *MockTokenSource) Token(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockErrorReporter is a mock implementation of ErrorReporter for testing.
type MockErrorReporter struct {
	mock.Mock
}

var _ ErrorReporter = &MockErrorReporter{} // Compile-time check

// Report implements the ErrorReporter interface.
func (m *MockErrorReporter) Report(msg string) {
	m.Called(msg)
}
