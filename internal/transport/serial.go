package transport

import (
	"context"
	"io"
	"time"

	serial "github.com/daedaluz/goserial"
	"github.com/gravitational/trace"
	"github.com/kplexgo/kplex/internal/config"
	"github.com/kplexgo/kplex/internal/frame"
	"github.com/kplexgo/kplex/internal/senblk"
	"github.com/kplexgo/kplex/internal/squeue"
	"github.com/kplexgo/kplex/internal/topology"
)

// cancelPollInterval is the read-timeout granularity used as the
// self-pipe substitute: a worker notices Direction flipping to None
// at most this long after a cancel-worker request.
const cancelPollInterval = 250 * time.Millisecond

var baudRates = map[string]serial.CFlag{
	"4800":  serial.B4800,
	"9600":  serial.B9600,
	"38400": serial.B38400,
}

func parseBaud(opts map[string]string) (serial.CFlag, error) {
	b, ok := opts["baud"]
	if !ok {
		return serial.B4800, nil
	}
	rate, ok := baudRates[b]
	if !ok {
		return 0, trace.BadParameter("serial: unsupported baud rate %q", b)
	}
	return rate, nil
}

func openRaw(path string, baud serial.CFlag, parity bool) (*serial.Port, error) {
	port, err := serial.Open(path, serial.NewOptions().SetReadTimeout(cancelPollInterval))
	if err != nil {
		return nil, trace.Wrap(err, "opening %s", path)
	}
	attrs, err := port.GetAttr()
	if err != nil {
		port.Close()
		return nil, trace.Wrap(err)
	}
	attrs.MakeRaw()
	attrs.SetSpeed(baud)
	if parity {
		attrs.Cflag |= serial.PARENB
		attrs.Iflag |= serial.PARMRK
		attrs.Iflag &^= serial.IGNPAR
	}
	if err := port.SetAttr(serial.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, trace.Wrap(err)
	}
	return port, nil
}

func initSerial(desc config.Descriptor, central *squeue.Queue, qsize int) ([]*topology.Interface, error) {
	path, ok := desc.Options["filename"]
	if !ok {
		return nil, trace.BadParameter("serial: missing filename")
	}
	baud, err := parseBaud(desc.Options)
	if err != nil {
		return nil, err
	}
	dir, err := direction(desc)
	if err != nil {
		return nil, err
	}

	port, err := openRaw(path, baud, false)
	if err != nil {
		return nil, err
	}

	switch dir {
	case topology.In:
		ifc := newInterface("serial", topology.In, desc)
		ifc.Queue = central
		ifc.Info = port
		ifc.Read = serialRead
		ifc.Cleanup = serialCleanup
		ifc.Cancel = serialCancel(port)
		return []*topology.Interface{ifc}, nil

	case topology.Out:
		ifc := newInterface("serial", topology.Out, desc)
		ifc.Queue = squeue.New(qsize)
		ifc.Info = port
		ifc.Write = serialWrite
		ifc.Cleanup = serialCleanup
		ifc.Cancel = serialCancel(port)
		return []*topology.Interface{ifc}, nil

	default: // Both
		in := newInterface("serial", topology.In, desc)
		in.Queue = central
		in.Info = port
		in.Read = serialRead
		in.Cleanup = serialCleanup
		in.Cancel = serialCancel(port)

		out := newInterface("serial", topology.Out, desc)
		out.Info = port
		out.Write = serialWrite
		out.Cleanup = serialCleanup
		out.Cancel = serialCancel(port)

		splitBoth(in, out, squeue.New(qsize))
		return []*topology.Interface{in, out}, nil
	}
}

func serialCancel(port *serial.Port) func() {
	return func() { port.SetReadTimeout(0) }
}

func serialCleanup(ifc *topology.Interface) {
	if port, ok := ifc.Info.(*serial.Port); ok {
		port.Close()
	}
}

func serialRead(ctx context.Context, ifc *topology.Interface) error {
	port := ifc.Info.(*serial.Port)
	rdr := frame.NewReader(ifc.Queue, ifc.ID)
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if ifc.Direction == topology.None {
			return nil
		}
		n, err := port.Read(buf)
		if n > 0 {
			rdr.Feed(buf[:n])
		}
		if err != nil {
			if isTimeout(err) {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return trace.Wrap(err)
		}
	}
}

func serialWrite(ctx context.Context, ifc *topology.Interface) error {
	port := ifc.Info.(*serial.Port)
	for {
		h := ifc.Queue.Pop()
		if h == nil {
			return nil
		}
		_, err := port.Write(h.Bytes())
		ifc.Queue.Release(h)
		if err != nil {
			return trace.Wrap(err)
		}
	}
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	t, ok := err.(timeouter)
	return ok && t.Timeout()
}
