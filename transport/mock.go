package transport

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockHandle is a testify mock implementation of the Handle interface for
// testing the layers above the transport.
type MockHandle struct {
	mock.Mock
	loc Locator
}

var _ Handle = (*MockHandle)(nil)

// NewMockHandle creates a mock handle reporting the given locator.
func NewMockHandle(locator string) *MockHandle {
	loc, _ := ParseLocator(locator)
	return &MockHandle{loc: loc}
}

func (m *MockHandle) Locator() Locator { return m.loc }

func (m *MockHandle) Write(cmd string) error {
	args := m.Called(cmd)
	return args.Error(0)
}

func (m *MockHandle) Read() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockHandle) Query(cmd string) (string, error) {
	args := m.Called(cmd)
	return args.String(0), args.Error(1)
}

func (m *MockHandle) SetTimeout(d time.Duration) {
	m.Called(d)
}

func (m *MockHandle) Timeout() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockHandle) Close() error {
	args := m.Called()
	return args.Error(0)
}
