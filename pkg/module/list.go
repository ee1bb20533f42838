package module

import (
	"errors"
	"fmt"
)

var (
	ErrNoEntrypoints = errors.New("module has no entrypoints")
	ErrDuplicateName = errors.New("module name already registered")
)

// List is the ordered set of modules the scheduler walks every frame.
type List struct {
	modules []*Module
	byName  map[string]*Module
}

func NewList() *List {
	return &List{
		byName: make(map[string]*Module),
	}
}

// Add appends a module to the end of the list.
func (l *List) Add(m *Module) error {
	if m == nil || !m.HasEntrypoints() {
		name := "<nil>"
		if m != nil {
			name = m.Name
		}
		return fmt.Errorf("could not add %s: %w", name, ErrNoEntrypoints)
	}

	if _, ok := l.byName[m.Name]; ok {
		return fmt.Errorf("could not add %s: %w", m.Name, ErrDuplicateName)
	}

	l.modules = append(l.modules, m)
	l.byName[m.Name] = m
	return nil
}

func (l *List) Len() int {
	return len(l.modules)
}

func (l *List) Get(name string) *Module {
	return l.byName[name]
}

func (l *List) Each(fn func(*Module)) {
	for _, m := range l.modules {
		fn(m)
	}
}

// Active counts the modules whose state is not Off.
func (l *List) Active() (count int) {
	for _, m := range l.modules {
		if m.State.Active() {
			count++
		}
	}
	return
}
