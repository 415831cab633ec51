package document

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/cozy/substance-go/model"
	"github.com/cozy/substance-go/transform"
)

// EventProxy dispatches the changes of a document to its own observers.
type EventProxy interface {
	OnDocumentChanged(change *transform.DocumentChange, info ChangeInfo)
}

// OnChange registers a listener called after each change. The returned
// function unregisters it.
func (d *Document) OnChange(fn ChangeListener) func() {
	id := d.nextListener
	d.nextListener++
	d.listeners[id] = fn
	return func() { delete(d.listeners, id) }
}

// OnTransactionStarted registers a function called when a transaction is
// started. The returned function unregisters it.
func (d *Document) OnTransactionStarted(fn func(tx *transform.Transaction)) func() {
	return d.stage.OnStart(fn)
}

// EventProxy returns the proxy registered under the given name, or nil.
// The document comes with a "path" proxy, a *PathEventProxy.
func (d *Document) EventProxy(name string) EventProxy {
	return d.proxies[name]
}

// PathEventProxy returns the "path" event proxy.
func (d *Document) PathEventProxy() *PathEventProxy {
	proxy, _ := d.proxies["path"].(*PathEventProxy)
	return proxy
}

// AddEventProxy registers a proxy under a name, replacing the previous one.
func (d *Document) AddEventProxy(name string, proxy EventProxy) {
	d.proxies[name] = proxy
}

// notify calls the proxies, then the listeners in registration order.
func (d *Document) notify(change *transform.DocumentChange, info ChangeInfo) {
	for _, name := range sortedKeys(d.proxies) {
		d.proxies[name].OnDocumentChanged(change, info)
	}
	for id := 0; id < d.nextListener; id++ {
		if fn, ok := d.listeners[id]; ok {
			fn(change, info)
		}
	}
}

type pathListener struct {
	path     model.Path
	observer interface{}
	fn       ChangeListener
}

// PathEventProxy calls its observers when a change affects one of the paths
// they listen to. An observer is called once per change, even if several of
// its paths are affected.
//
// Observers are compared with ==: they must be comparable values, like
// pointers or strings.
type PathEventProxy struct {
	listeners []*pathListener
}

// NewPathEventProxy returns an empty proxy.
func NewPathEventProxy() *PathEventProxy {
	return &PathEventProxy{}
}

// Add registers fn to be called when the path is affected by a change. A
// path with only a node id listens to all the properties of the node. An
// observer that can't be compared, like a map or a func, is refused with
// ErrInvalidObserver.
func (p *PathEventProxy) Add(path model.Path, observer interface{}, fn ChangeListener) error {
	if observer != nil && !reflect.ValueOf(observer).Comparable() {
		return fmt.Errorf("%w: %T", ErrInvalidObserver, observer)
	}
	p.listeners = append(p.listeners, &pathListener{
		path:     path.Clone(),
		observer: observer,
		fn:       fn,
	})
	return nil
}

// Remove unregisters the functions of an observer for a path.
func (p *PathEventProxy) Remove(path model.Path, observer interface{}) {
	p.filter(func(l *pathListener) bool {
		return l.observer == observer && l.path.Equal(path)
	})
}

// RemoveObserver unregisters all the functions of an observer.
func (p *PathEventProxy) RemoveObserver(observer interface{}) {
	p.filter(func(l *pathListener) bool {
		return l.observer == observer
	})
}

// Len returns the number of registrations.
func (p *PathEventProxy) Len() int {
	return len(p.listeners)
}

func (p *PathEventProxy) filter(remove func(l *pathListener) bool) {
	kept := p.listeners[:0]
	for _, l := range p.listeners {
		if !remove(l) {
			kept = append(kept, l)
		}
	}
	for i := len(kept); i < len(p.listeners); i++ {
		p.listeners[i] = nil
	}
	p.listeners = kept
}

// OnDocumentChanged implements EventProxy.
func (p *PathEventProxy) OnDocumentChanged(change *transform.DocumentChange, info ChangeInfo) {
	called := map[interface{}]bool{}
	for _, l := range append([]*pathListener(nil), p.listeners...) {
		if called[l.observer] || !change.IsAffected(l.path) {
			continue
		}
		called[l.observer] = true
		l.fn(change, info)
	}
}

func sortedKeys(m map[string]EventProxy) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
