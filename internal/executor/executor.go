package executor

import (
	"io"
	"sync"
)

// Executor is inspired by Java Executor that abstracts submitting a task and executing it.
type Executor interface {
	// Execute executes the given command.
	Execute(func())
}

// ExecuteCloser adds io.Closer to Executor.
//
// Close waits for all submitted commands to finish. Execute must not be called after Close.
type ExecuteCloser interface {
	Executor
	io.Closer
}

// NewFixedPool returns a new Executor backed by exactly n goroutines.
//
// Execute blocks while all n goroutines are busy. If n is 0 or negative, commands are executed on the same goroutine
// as the caller.
func NewFixedPool(n int) ExecuteCloser {
	if n <= 0 {
		return &callerRunExecutor{}
	}

	ex := &fixedPoolExecutor{inputs: make(chan func())}
	ex.workers.Add(n)
	for range n {
		go func() {
			defer ex.workers.Done()

			for f := range ex.inputs {
				f()
			}
		}()
	}

	return ex
}

type fixedPoolExecutor struct {
	inputs  chan func()
	workers sync.WaitGroup

	// once guards closing inputs.
	once sync.Once
}

func (ex *fixedPoolExecutor) Execute(f func()) {
	ex.inputs <- f
}

func (ex *fixedPoolExecutor) Close() error {
	ex.once.Do(func() {
		close(ex.inputs)
	})
	ex.workers.Wait()

	return nil
}

type callerRunExecutor struct {
}

func (ex callerRunExecutor) Execute(f func()) {
	f()
}

func (ex callerRunExecutor) Close() error {
	return nil
}
