//go:build !linux

// Package affinity pins the calling OS thread to a single logical
// CPU. No portable non-Linux syscall exists for this, so Pin is a
// no-op everywhere else — a dispatcher still runs correctly, just
// without the exclusive-core guarantee.
package affinity

// Pin is a no-op outside Linux.
func Pin(cpu int) error { return nil }

// Available reports whether CPU pinning is supported on this
// platform.
func Available() bool { return false }
