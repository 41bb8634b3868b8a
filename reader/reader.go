// Package reader pulls the embedded metadata JSON back out of a compiled
// Cedar shared object.
package reader

import "github.com/coreos/pkg/dlopen"

import "C"

// ReadMeta dlopens the artifact and returns the NUL-terminated JSON
// stored under the __cedar_meta symbol.
func ReadMeta(from string) (string, error) {
	handle, err := dlopen.GetHandle([]string{from})
	if err != nil {
		return "", err
	}
	defer handle.Close()

	sym, err := handle.GetSymbolPointer("__cedar_meta")
	if err != nil {
		return "", err
	}

	return C.GoString((*C.char)(sym)), nil
}
