//go:build js && wasm

package main

import "github.com/Its-donkey/gbpl-site/internal/ui/wasm"

func main() {
	wasm.RunApp()
}
