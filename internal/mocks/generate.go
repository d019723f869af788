// Package mocks provides mock implementations for testing the FlowState client.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	backend := mocks.NewMockBackend(ctrl)
//	backend.EXPECT().Authenticate(gomock.Any(), gomock.Any()).Return("token", nil)
package mocks

// Generate mock for Backend interface from internal/ports package.
// This creates MockBackend with methods for all Backend interface methods:
// Authenticate, Register, CurrentUser, ListSessions
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=backend_mock.go github.com/flowstate/flowstate-dashboard/internal/ports Backend

// Generate mock for Storage interface from internal/ports package.
// This creates MockStorage with methods for all Storage interface methods:
// Get, Set, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=storage_mock.go github.com/flowstate/flowstate-dashboard/internal/ports Storage
