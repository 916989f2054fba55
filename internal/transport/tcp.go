package transport

import (
	"bufio"
	"context"
	"io"
	"net"

	"github.com/gravitational/trace"
	"github.com/kplexgo/kplex/internal/config"
	"github.com/kplexgo/kplex/internal/frame"
	"github.com/kplexgo/kplex/internal/squeue"
	"github.com/kplexgo/kplex/internal/topology"
)

func initTCP(desc config.Descriptor, central *squeue.Queue, qsize int) ([]*topology.Interface, error) {
	dir, err := direction(desc)
	if err != nil {
		return nil, err
	}
	addr, ok := desc.Options["address"]
	if !ok {
		return nil, trace.BadParameter("tcp: missing address")
	}
	port, ok := desc.Options["port"]
	if !ok {
		return nil, trace.BadParameter("tcp: missing port")
	}
	mode := desc.Options["mode"]
	if mode == "" {
		mode = "client"
	}

	var conn net.Conn
	switch mode {
	case "client":
		conn, err = net.Dial("tcp", net.JoinHostPort(addr, port))
	case "server":
		var ln net.Listener
		ln, err = net.Listen("tcp", net.JoinHostPort(addr, port))
		if err == nil {
			conn, err = ln.Accept()
			ln.Close()
		}
	default:
		return nil, trace.BadParameter("tcp: invalid mode %q", mode)
	}
	if err != nil {
		return nil, trace.Wrap(err, "tcp %s %s:%s", mode, addr, port)
	}

	switch dir {
	case topology.In:
		ifc := newInterface("tcp", topology.In, desc)
		ifc.Queue = central
		ifc.Info = conn
		ifc.Read = tcpRead
		ifc.Cleanup = connCleanup
		ifc.Cancel = connCancel(conn)
		return []*topology.Interface{ifc}, nil

	case topology.Out:
		ifc := newInterface("tcp", topology.Out, desc)
		ifc.Queue = squeue.New(qsize)
		ifc.Info = conn
		ifc.Write = connWrite
		ifc.Cleanup = connCleanup
		ifc.Cancel = connCancel(conn)
		return []*topology.Interface{ifc}, nil

	default: // Both — native to a single net.Conn, still split into a pair per spec.md §3(b)
		in := newInterface("tcp", topology.In, desc)
		in.Queue = central
		in.Info = conn
		in.Read = tcpRead
		in.Cleanup = connCleanup
		in.Cancel = connCancel(conn)

		out := newInterface("tcp", topology.Out, desc)
		out.Info = conn
		out.Write = connWrite
		out.Cleanup = connCleanup
		out.Cancel = connCancel(conn)

		splitBoth(in, out, squeue.New(qsize))
		return []*topology.Interface{in, out}, nil
	}
}

func connCancel(conn net.Conn) func() {
	return func() { conn.SetDeadline(timeInPast) }
}

func connCleanup(ifc *topology.Interface) {
	if conn, ok := ifc.Info.(net.Conn); ok {
		conn.Close()
	}
}

func tcpRead(ctx context.Context, ifc *topology.Interface) error {
	conn := ifc.Info.(net.Conn)
	rdr := frame.NewReader(ifc.Queue, ifc.ID)
	r := bufio.NewReaderSize(conn, 4096)
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		n, err := r.Read(buf)
		if n > 0 {
			rdr.Feed(buf[:n])
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return trace.Wrap(err)
		}
	}
}

func connWrite(ctx context.Context, ifc *topology.Interface) error {
	conn := ifc.Info.(net.Conn)
	for {
		h := ifc.Queue.Pop()
		if h == nil {
			return nil
		}
		_, err := conn.Write(h.Bytes())
		ifc.Queue.Release(h)
		if err != nil {
			return trace.Wrap(err)
		}
	}
}
