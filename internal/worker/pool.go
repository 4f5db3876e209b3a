package worker

import (
	"sync"
)

// Pool bounds concurrent executions using a semaphore. The bound is
// process-wide for the owning worker; Capacity feeds the next claim
// size so claims never exceed what can actually be dispatched.
type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Capacity returns the number of free execution slots.
func (p *Pool) Capacity() int {
	return cap(p.sem) - len(p.sem)
}

// TrySubmit runs fn on a free slot, or reports false without
// blocking when the pool is saturated.
func (p *Pool) TrySubmit(fn func()) bool {
	select {
	case p.sem <- struct{}{}:
	default:
		return false
	}

	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.sem
			p.wg.Done()
		}()
		fn()
	}()
	return true
}

// Wait blocks until every submitted execution has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}
