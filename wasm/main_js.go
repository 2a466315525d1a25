//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/voxelsplace/vdb2density/api"
)

func bytesFromJS(v js.Value) []byte {
	b := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(b, v)
	return b
}

func bytesToJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

// options reads {metadataKey, skipOutOfRange} from an optional JS object.
func options(args []js.Value, i int) api.Options {
	var opts api.Options
	if len(args) <= i || args[i].Type() != js.TypeObject {
		return opts
	}
	if k := args[i].Get("metadataKey"); k.Type() == js.TypeString {
		opts.MetadataKey = k.String()
	}
	if s := args[i].Get("skipOutOfRange"); s.Type() == js.TypeBoolean {
		opts.SkipOutOfRange = s.Bool()
	}
	return opts
}

func result(out []byte, err error) any {
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

// vopl2density(bytes, opts?)
func vopl2density(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing vopl bytes")
	}
	return result(api.DensityFromVOPL(bytesFromJS(args[0]), options(args, 1)))
}

// voplpack2density(bytes, gridName, opts?)
func voplpack2density(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing voplpack bytes or grid name")
	}
	return result(api.DensityFromVOPLPack(bytesFromJS(args[0]), args[1].String(), options(args, 2)))
}

// manifest2density(bytes, gridName?, opts?)
func manifest2density(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing manifest bytes")
	}
	var name string
	if len(args) > 1 && args[1].Type() == js.TypeString {
		name = args[1].String()
	}
	return result(api.DensityFromManifest(bytesFromJS(args[0]), name, options(args, 2)))
}

// density2glb(bytes, threshold?)
func density2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing density bytes")
	}
	var threshold float64
	if len(args) > 1 && args[1].Type() == js.TypeNumber {
		threshold = args[1].Float()
	}
	return result(api.DensityToGLB(bytesFromJS(args[0]), threshold))
}

func main() {
	js.Global().Set("vopl2density", js.FuncOf(vopl2density))
	js.Global().Set("voplpack2density", js.FuncOf(voplpack2density))
	js.Global().Set("manifest2density", js.FuncOf(manifest2density))
	js.Global().Set("density2glb", js.FuncOf(density2glb))
	select {}
}
