//go:build !windows

package main

import (
	"os"
	"syscall"
)

// terminationSignals end a chat session cleanly.
var terminationSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
