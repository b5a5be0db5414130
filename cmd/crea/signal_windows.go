//go:build windows

package main

import (
	"os"
)

// terminationSignals end a chat session cleanly. Windows only delivers Ctrl+C.
var terminationSignals = []os.Signal{os.Interrupt}
