package transport

import (
	serial "github.com/daedaluz/goserial"
	"github.com/gravitational/trace"
	"github.com/kplexgo/kplex/internal/config"
	"github.com/kplexgo/kplex/internal/squeue"
	"github.com/kplexgo/kplex/internal/topology"
)

// initPTY opens a fresh pseudoterminal pair and hands this process the
// side named by mode=master|slave. Info holds this process's own end;
// the other end is closed at once and its device path is not reported.
func initPTY(desc config.Descriptor, central *squeue.Queue, qsize int) ([]*topology.Interface, error) {
	dir, err := direction(desc)
	if err != nil {
		return nil, err
	}
	mode := desc.Options["mode"]
	if mode == "" {
		mode = "master"
	}
	if mode != "master" && mode != "slave" {
		return nil, trace.BadParameter("pty: invalid mode %q", mode)
	}

	master, slave, err := serial.OpenPTY(nil, nil)
	if err != nil {
		return nil, trace.Wrap(err, "opening pty pair")
	}

	var port *serial.Port
	var peer *serial.Port
	if mode == "master" {
		port, peer = master, slave
	} else {
		port, peer = slave, master
	}
	peer.Close() // only one end of the pair belongs to this process

	switch dir {
	case topology.In:
		ifc := newInterface("pty", topology.In, desc)
		ifc.Queue = central
		ifc.Info = port
		ifc.Read = serialRead
		ifc.Cleanup = serialCleanup
		ifc.Cancel = serialCancel(port)
		return []*topology.Interface{ifc}, nil

	case topology.Out:
		ifc := newInterface("pty", topology.Out, desc)
		ifc.Queue = squeue.New(qsize)
		ifc.Info = port
		ifc.Write = serialWrite
		ifc.Cleanup = serialCleanup
		ifc.Cancel = serialCancel(port)
		return []*topology.Interface{ifc}, nil

	default: // Both
		in := newInterface("pty", topology.In, desc)
		in.Queue = central
		in.Info = port
		in.Read = serialRead
		in.Cleanup = serialCleanup
		in.Cancel = serialCancel(port)

		out := newInterface("pty", topology.Out, desc)
		out.Info = port
		out.Write = serialWrite
		out.Cleanup = serialCleanup
		out.Cancel = serialCancel(port)

		splitBoth(in, out, squeue.New(qsize))
		return []*topology.Interface{in, out}, nil
	}
}
