//go:build linux || darwin

package vault

import "syscall"

// lockMemory pins the passphrase buffer's pages so they cannot be swapped
// to disk. Best-effort: the process may lack CAP_IPC_LOCK.
func lockMemory(b []byte) {
	_ = syscall.Mlock(b)
}

// unlockMemory releases pages pinned by lockMemory.
func unlockMemory(b []byte) {
	_ = syscall.Munlock(b)
}

// disableCoreDumps zeroes RLIMIT_CORE so an aborted process cannot leave
// passphrase material in a core file. Best-effort.
func disableCoreDumps() {
	_ = syscall.Setrlimit(syscall.RLIMIT_CORE, &syscall.Rlimit{Cur: 0, Max: 0})
}
