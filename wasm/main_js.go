//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/voxelsplace/kv6/api"
	"github.com/voxelsplace/kv6/kv6"
)

func bytesFromJS(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

func bytesToJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

func kv62glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing kv6 bytes")
	}
	out, err := api.KV6ToGLB(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func kv6Info(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing kv6 bytes")
	}
	out, err := api.KV6Info(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return js.Global().Get("JSON").Call("parse", string(out))
}

func packKV6s(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing files object")
	}
	filesObj := args[0]
	files := map[string][]byte{}
	keys := js.Global().Get("Object").Call("keys", filesObj)
	for i := 0; i < keys.Length(); i++ {
		k := keys.Index(i).String()
		files[k] = bytesFromJS(filesObj.Get(k))
	}
	out, err := api.PackKV6s(files, kv6.LayoutRaw, kv6.PackCompZstd)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func unpackKV6Pack(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing pack bytes")
	}
	files, err := api.UnpackKV6PackToMemory(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	result := js.Global().Get("Object").New()
	for name, b := range files {
		result.Set(name, bytesToJS(b))
	}
	return result
}

func main() {
	js.Global().Set("kv62glb", js.FuncOf(kv62glb))
	js.Global().Set("kv6Info", js.FuncOf(kv6Info))
	js.Global().Set("packKV6s", js.FuncOf(packKV6s))
	js.Global().Set("unpackKV6Pack", js.FuncOf(unpackKV6Pack))
	select {}
}
