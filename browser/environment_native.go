//go:build !js || !wasm

package browser

// DefaultEnvironment returns a headless environment outside the browser.
func DefaultEnvironment() Environment {
	return NewStaticEnvironment("")
}
