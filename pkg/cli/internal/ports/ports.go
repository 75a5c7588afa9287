// Package ports provides port availability checking.
package ports

import (
	"fmt"
	"net"
)

// IsAvailable reports whether a port can be bound.
func IsAvailable(port int) bool {
	return Check(port) == nil
}

// Check attempts to bind a port and returns the bind error if any.
func Check(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	_ = ln.Close()
	return nil
}
