package runner

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockRunner is a testify/mock implementation of Runner.
//
//	r := new(MockRunner)
//	r.On("Start", mock.Anything, cmd, mock.Anything).Return(nil, errors.New("boom"))
type MockRunner struct {
	mock.Mock
}

// Start returns the configured Process and error.
func (m *MockRunner) Start(ctx context.Context, cmd Command, onLine LineFunc) (Process, error) {
	args := m.Called(ctx, cmd, onLine)
	if p := args.Get(0); p != nil {
		return p.(Process), args.Error(1)
	}
	return nil, args.Error(1)
}

// FakeProcess is a Process driven by the test: call Exit to finish it.
type FakeProcess struct {
	mock.Mock

	done     chan struct{}
	exitCode int
	err      error
}

// NewFakeProcess returns a running fake process.
func NewFakeProcess() *FakeProcess {
	return &FakeProcess{done: make(chan struct{})}
}

// Exit finishes the process with code and err.
func (f *FakeProcess) Exit(code int, err error) {
	f.exitCode = code
	f.err = err
	close(f.done)
}

func (f *FakeProcess) PID() int              { return 4242 }
func (f *FakeProcess) Done() <-chan struct{} { return f.done }
func (f *FakeProcess) ExitCode() int         { return f.exitCode }
func (f *FakeProcess) Err() error            { return f.err }

// Stop records the call and returns the configured error. Configure with
//
//	p.On("Stop", mock.Anything).Return(nil).Run(func(mock.Arguments) { p.Exit(-1, nil) })
func (f *FakeProcess) Stop(grace time.Duration) error {
	args := f.Called(grace)
	return args.Error(0)
}
