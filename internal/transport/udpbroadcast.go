package transport

import (
	"context"
	"net"
	"os"
	"strconv"

	"github.com/gravitational/trace"
	"golang.org/x/sys/unix"

	"github.com/kplexgo/kplex/internal/config"
	"github.com/kplexgo/kplex/internal/frame"
	"github.com/kplexgo/kplex/internal/squeue"
	"github.com/kplexgo/kplex/internal/topology"
)

// initBroadcast opens a UDP socket with SO_BROADCAST set directly via
// golang.org/x/sys/unix, since net.ListenUDP/DialUDP offer no hook for
// it. Direction is always effectively Both: one socket both receives
// and sends, matching spec.md §4.9's note that broadcast interfaces
// are bidirectional by nature.
func initBroadcast(desc config.Descriptor, central *squeue.Queue, qsize int) ([]*topology.Interface, error) {
	portStr, ok := desc.Options["port"]
	if !ok {
		return nil, trace.BadParameter("broadcast: missing port")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, trace.BadParameter("broadcast: invalid port %q", portStr)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return nil, trace.Wrap(err, "broadcast socket")
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BROADCAST, 1); err != nil {
		unix.Close(fd)
		return nil, trace.Wrap(err, "SO_BROADCAST")
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, trace.Wrap(err, "SO_REUSEADDR")
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port}); err != nil {
		unix.Close(fd)
		return nil, trace.Wrap(err, "binding broadcast socket")
	}

	f := os.NewFile(uintptr(fd), "broadcast")
	conn, err := net.FilePacketConn(f)
	f.Close()
	if err != nil {
		unix.Close(fd)
		return nil, trace.Wrap(err, "wrapping broadcast socket")
	}

	dst := &net.UDPAddr{IP: net.IPv4bcast, Port: port}

	in := newInterface("broadcast", topology.In, desc)
	in.Queue = central
	in.Info = conn
	in.Read = broadcastRead
	in.Cleanup = broadcastCleanup
	in.Cancel = func() { conn.SetDeadline(timeInPast) }

	out := newInterface("broadcast", topology.Out, desc)
	out.Info = &broadcastTarget{conn: conn, addr: dst}
	out.Write = broadcastWrite
	out.Cleanup = broadcastCleanup
	out.Cancel = func() { conn.SetDeadline(timeInPast) }

	splitBoth(in, out, squeue.New(qsize))
	return []*topology.Interface{in, out}, nil
}

type broadcastTarget struct {
	conn net.PacketConn
	addr net.Addr
}

func broadcastCleanup(ifc *topology.Interface) {
	switch v := ifc.Info.(type) {
	case net.PacketConn:
		v.Close()
	case *broadcastTarget:
		// shares the In side's conn; that side's Cleanup closes it.
	}
}

func broadcastRead(ctx context.Context, ifc *topology.Interface) error {
	conn := ifc.Info.(net.PacketConn)
	rdr := frame.NewReader(ifc.Queue, ifc.ID)
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		n, _, err := conn.ReadFrom(buf)
		if n > 0 {
			rdr.Feed(buf[:n])
		}
		if err != nil {
			return trace.Wrap(err)
		}
	}
}

func broadcastWrite(ctx context.Context, ifc *topology.Interface) error {
	target := ifc.Info.(*broadcastTarget)
	for {
		h := ifc.Queue.Pop()
		if h == nil {
			return nil
		}
		_, err := target.conn.WriteTo(h.Bytes(), target.addr)
		ifc.Queue.Release(h)
		if err != nil {
			return trace.Wrap(err)
		}
	}
}
