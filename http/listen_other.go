//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package http

import (
	"errors"
	"syscall"
)

func reusePortControl(network, address string, rawConn syscall.RawConn) error {
	return errors.New("http: SO_REUSEPORT is not supported on this platform")
}
