package generic

import "sync"

// Pool is a typed sync.Pool. An optional reset func runs on every value
// handed back with Put.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
}

func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
}

// NewResettingPool is NewPool with a reset hook applied on Put.
func NewResettingPool[T any](generate func() T, reset func(T)) *Pool[T] {
	p := NewPool[T](generate)
	p.reset = reset
	return p
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		p.reset(value)
	}
	p.pool.Put(value)
}
