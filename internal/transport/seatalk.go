package transport

import (
	"context"
	"io"

	serial "github.com/daedaluz/goserial"
	"github.com/gravitational/trace"
	"github.com/kplexgo/kplex/internal/config"
	"github.com/kplexgo/kplex/internal/seatalk"
	"github.com/kplexgo/kplex/internal/squeue"
	"github.com/kplexgo/kplex/internal/topology"
)

// initSeatalk always wraps a serial port opened with space parity and
// PARMRK-equivalent framing so the escape sequences internal/seatalk
// decodes survive the tty driver untouched. Direction is fixed "in";
// a "direction" option in the specifier is rejected rather than
// silently ignored.
func initSeatalk(desc config.Descriptor, central *squeue.Queue, qsize int) ([]*topology.Interface, error) {
	if _, ok := desc.Direction(); ok {
		return nil, trace.BadParameter("seatalk: direction is implicitly \"in\" and may not be specified")
	}
	path, ok := desc.Options["filename"]
	if !ok {
		return nil, trace.BadParameter("seatalk: missing filename")
	}

	port, err := openRaw(path, serial.B4800, true)
	if err != nil {
		return nil, err
	}

	ifc := newInterface("seatalk", topology.In, desc)
	ifc.Queue = central
	ifc.Info = port
	ifc.Read = seatalkRead
	ifc.Cleanup = serialCleanup
	ifc.Cancel = serialCancel(port)
	return []*topology.Interface{ifc}, nil
}

func seatalkRead(ctx context.Context, ifc *topology.Interface) error {
	port := ifc.Info.(*serial.Port)
	rdr := seatalk.NewReader(ifc.Queue, ifc.ID, seatalk.Translate)
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
