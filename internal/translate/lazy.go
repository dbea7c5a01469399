package translate

import (
	"context"
	"sync"
)

// Lazy defers building a backend until the first translation. The result of
// the constructor, including its error, is kept for the process lifetime.
type Lazy struct {
	name string
	once sync.Once
	ctor func() (Backend, error)

	backend Backend
	err     error
}

// NewLazy wraps ctor. name is reported before the backend exists.
func NewLazy(name string, ctor func() (Backend, error)) *Lazy {
	return &Lazy{name: name, ctor: ctor}
}

func (l *Lazy) Name() string { return l.name }

func (l *Lazy) get() (Backend, error) {
	l.once.Do(func() {
		l.backend, l.err = l.ctor()
	})
	return l.backend, l.err
}

func (l *Lazy) Translate(ctx context.Context, text, from, to string) (string, error) {
	b, err := l.get()
	if err != nil {
		return "", err
	}
	return b.Translate(ctx, text, from, to)
}
