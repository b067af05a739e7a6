//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/sardine-ai/go-webclient/browser"
	"github.com/sardine-ai/go-webclient/model"
	"github.com/sardine-ai/go-webclient/transport"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := model.DefaultConfig()
	if raw := js.Global().Get("webclientConfig"); raw.Type() == js.TypeString {
		overrides := cfg.Clone()
		if err := json.Unmarshal([]byte(raw.String()), &overrides); err != nil {
			logrus.WithError(err).Error("ignoring invalid webclientConfig")
		} else {
			cfg = overrides
		}
	}
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	service := browser.NewService(browser.DefaultEnvironment(), logrus.StandardLogger())

	exports := js.Global().Get("Object").New()
	exports.Set("getBrowser", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return toJS(service.GetBrowser())
	}))
	exports.Set("isVisible", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return service.IsVisible()
	}))
	exports.Set("supportsWebrtcTask", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return service.SupportsWebrtcTask()
	}))
	exports.Set("supportsExtendedLocaleCompare", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return service.SupportsExtendedLocaleCompare()
	}))
	exports.Set("selectTasks", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return toJS(transport.SelectTasks(service))
	}))
	exports.Set("getConfig", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		return toJS(cfg)
	}))
	js.Global().Set("webclient", exports)

	window := js.Global().Get("window")
	if window.Truthy() {
		window.Call("addEventListener", "beforeunload", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			service.Close()
			return nil
		}))
	}

	logrus.Info("Web client bindings ready")
	select {}
}

func toJS(v interface{}) js.Value {
	b, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).Error("error encoding value for js")
		return js.Null()
	}
	return js.Global().Get("JSON").Call("parse", string(b))
}
