package wkpf

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// MaxObjects is the number of WuObjects a node can expose; indexes are one byte.
const MaxObjects = 255

var (
	// ErrClassExists indicates a class id registered twice.
	ErrClassExists = errors.New("wkpf: class already registered")
	// ErrUnknownClass indicates an object created for an unregistered class.
	ErrUnknownClass = errors.New("wkpf: unknown class")
	// ErrTooManyObjects indicates the object table is full.
	ErrTooManyObjects = errors.New("wkpf: too many objects")
)

// WuClass is a class of virtual objects a node implements.
type WuClass struct {
	ID   uint16
	Name string
}

// WuObject is an instance of a WuClass. Index is its creation order and the
// identifier used on the wire.
type WuObject struct {
	Index   uint8
	ClassID uint16
}

// Registry holds the classes and objects of a node.
//
// It is safe for concurrent use.
type Registry struct {
	classes *xsync.MapOf[uint16, WuClass]
	mu      sync.RWMutex
	objects []WuObject
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: xsync.NewMapOf[uint16, WuClass]()}
}

// AddClass registers a class.
func (r *Registry) AddClass(c WuClass) error {
	if _, loaded := r.classes.LoadOrStore(c.ID, c); loaded {
		return fmt.Errorf("%w: %d", ErrClassExists, c.ID)
	}

	return nil
}

// Class returns the class registered under id.
func (r *Registry) Class(id uint16) (WuClass, bool) {
	return r.classes.Load(id)
}

// Classes returns the registered classes ordered by id.
func (r *Registry) Classes() []WuClass {
	classes := make([]WuClass, 0, r.classes.Size())
	r.classes.Range(func(_ uint16, c WuClass) bool {
		classes = append(classes, c)
		return true
	})
	slices.SortFunc(classes, func(a, b WuClass) int {
		return int(a.ID) - int(b.ID)
	})

	return classes
}

// AddObject creates an object of a registered class.
func (r *Registry) AddObject(classID uint16) (WuObject, error) {
	if _, ok := r.classes.Load(classID); !ok {
		return WuObject{}, fmt.Errorf("%w: %d", ErrUnknownClass, classID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.objects) >= MaxObjects {
		return WuObject{}, ErrTooManyObjects
	}
	obj := WuObject{Index: uint8(len(r.objects)), ClassID: classID} //nolint:gosec
	r.objects = append(r.objects, obj)

	return obj, nil
}

// Objects returns the objects in creation order.
func (r *Registry) Objects() []WuObject {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.objects)
}
