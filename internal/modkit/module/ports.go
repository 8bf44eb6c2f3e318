package module

import (
	"fmt"
	"reflect"
)

// PortSet is whatever a module returns from Ports, usually a struct of interfaces
type PortSet = any

// PortsOf finds a T in m's ports: the bundle itself, or the first exported
// field of a struct (or pointer to struct) bundle that holds a T
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if p == nil {
		return zero, false
	}
	if v, ok := p.(T); ok {
		return v, true
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return zero, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := range rv.NumField() {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, ok := f.Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}

// MustPortsOf is PortsOf for startup wiring; a missing port panics with the module and type
func MustPortsOf[T any](m Module) T {
	v, ok := PortsOf[T](m)
	if !ok {
		panic(fmt.Sprintf("module %s: requested port %s not found", m.Name(), reflect.TypeFor[T]()))
	}
	return v
}
