//go:build linux

// Package affinity pins the calling OS thread to a single logical
// CPU, the way a dispatcher's worker goroutine claims exclusive use
// of one core for the lifetime of its hot loop. On Linux this is
// sched_setaffinity(2) via golang.org/x/sys/unix, the ecosystem
// wrapper around the raw syscall.
package affinity

import "golang.org/x/sys/unix"

// Pin pins the current OS thread to cpu (0-based). The caller must
// have already called runtime.LockOSThread, or the pin applies to
// whichever goroutine the scheduler happens to be running on this
// thread at the moment the syscall returns. Errors are reported, not
// swallowed — in a container with a restrictive cgroup or a seccomp
// filter, sched_setaffinity can fail with EPERM, and a caller that
// cares about real pinning needs to know.
func Pin(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}

// Available reports whether CPU pinning is supported on this
// platform.
func Available() bool { return true }
