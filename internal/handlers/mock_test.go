package handlers

import (
	"context"

	"github.com/themizzi/sitecheck/internal/models"
)

// MockRunReader is a mock implementation of RunReader for testing
type MockRunReader struct {
	GetRunFunc   func(string) (*models.Run, error)
	ListRunsFunc func(int) ([]*models.Run, error)
}

func (m *MockRunReader) GetRun(id string) (*models.Run, error) {
	if m.GetRunFunc != nil {
		return m.GetRunFunc(id)
	}
	return nil, models.ErrRunNotFound
}

func (m *MockRunReader) ListRuns(limit int) ([]*models.Run, error) {
	if m.ListRunsFunc != nil {
		return m.ListRunsFunc(limit)
	}
	return nil, nil
}

type MockPinger struct {
	Err error
}

func (m *MockPinger) PingContext(context.Context) error {
	return m.Err
}
