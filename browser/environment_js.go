//go:build js && wasm

package browser

import (
	"fmt"
	"syscall/js"
)

// JSEnvironment is the Environment of the page the wasm module runs in.
type JSEnvironment struct {
	global js.Value
}

// NewJSEnvironment binds to the global object of the page.
func NewJSEnvironment() *JSEnvironment {
	return &JSEnvironment{global: js.Global()}
}

// DefaultEnvironment returns the environment of the hosting page.
func DefaultEnvironment() Environment {
	return NewJSEnvironment()
}

func (e *JSEnvironment) UserAgent() string {
	navigator := e.global.Get("navigator")
	if !navigator.Truthy() {
		return ""
	}
	return navigator.Get("userAgent").String()
}

func (e *JSEnvironment) DocumentHidden(property string) (bool, bool) {
	document := e.global.Get("document")
	if !document.Truthy() {
		return false, false
	}
	value := document.Get(property)
	if value.IsUndefined() {
		return false, false
	}
	return value.Truthy(), true
}

func (e *JSEnvironment) AddEventListener(target Target, event string, handler func()) func() {
	name := "document"
	if target == TargetWindow {
		name = "window"
	}
	source := e.global.Get(name)
	if !source.Truthy() {
		return func() {}
	}
	fn := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		handler()
		return nil
	})
	source.Call("addEventListener", event, fn, false)
	return func() {
		source.Call("removeEventListener", event, fn, false)
		fn.Release()
	}
}

func (e *JSEnvironment) LocaleCompare(a, b, locales string) (result int, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		jsErr, ok := r.(js.Error)
		if !ok {
			panic(r)
		}
		if jsErr.Get("name").String() == "RangeError" {
			err = fmt.Errorf("%w: %s", ErrRange, jsErr.Error())
			return
		}
		err = jsErr
	}()
	// Methods cannot be called on a primitive through syscall/js.
	str := e.global.Get("String").New(a)
	return str.Call("localeCompare", b, locales).Int(), nil
}
