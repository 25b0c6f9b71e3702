//go:build unix

package launcher

import "syscall"

// detachAttr starts the command in its own session so a hangup of
// SnapKit's terminal does not reach it.
func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
