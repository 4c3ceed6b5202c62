// Socket setup for the shared UDP carrier used by the simulated air interface
package network

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// Opens a UDP socket on the port of addr that any number of local nodes can share.
// Broadcast is enabled so frames written to the broadcast address reach every node.
func ListenAir(ctx context.Context, addr *net.UDPAddr) (conn *net.UDPConn, err error) {
	cfg := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				for _, opt := range []int{unix.SO_REUSEADDR, unix.SO_REUSEPORT, unix.SO_BROADCAST} {
					sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, opt, 1)
					if sockErr != nil {
						return
					}
				}
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	listen := net.UDPAddr{Port: addr.Port}
	pc, err := cfg.ListenPacket(ctx, "udp4", listen.String())
	if err != nil {
		err = fmt.Errorf("failed to listen on shared air port %d: %w", addr.Port, err)
		return
	}
	conn = pc.(*net.UDPConn)
	return
}

// Resolves an air address, requiring an explicit port
func ResolveAir(address string) (addr *net.UDPAddr, err error) {
	addr, err = net.ResolveUDPAddr("udp4", address)
	if err != nil {
		err = fmt.Errorf("invalid air address %q: %w", address, err)
		return
	}
	if addr.Port == 0 {
		err = fmt.Errorf("air address %q has no port", address)
		addr = nil
		return
	}
	return
}
