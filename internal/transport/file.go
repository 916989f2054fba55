package transport

import (
	"context"
	"io"
	"os"

	"github.com/gravitational/trace"
	"github.com/kplexgo/kplex/internal/config"
	"github.com/kplexgo/kplex/internal/frame"
	"github.com/kplexgo/kplex/internal/squeue"
	"github.com/kplexgo/kplex/internal/topology"
)

// initFile opens a plain file. An input reads it once to EOF, which is
// an ordinary transport-fatal exit (triggering the usual last-input
// shutdown if nothing else feeds the central queue); an output appends.
func initFile(desc config.Descriptor, central *squeue.Queue, qsize int) ([]*topology.Interface, error) {
	path, ok := desc.Options["filename"]
	if !ok {
		return nil, trace.BadParameter("file: missing filename")
	}
	dir, err := direction(desc)
	if err != nil {
		return nil, err
	}
	if dir == topology.Both {
		return nil, trace.BadParameter("file: direction=both is not meaningful for a plain file")
	}

	switch dir {
	case topology.In:
		f, err := os.Open(path)
		if err != nil {
			return nil, trace.ConvertSystemError(err)
		}
		ifc := newInterface("file", topology.In, desc)
		ifc.Queue = central
		ifc.Info = f
		ifc.Read = fileRead
		ifc.Cleanup = fileCleanup
		ifc.Cancel = func() {} // a file read never blocks indefinitely
		return []*topology.Interface{ifc}, nil

	default: // Out
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, trace.ConvertSystemError(err)
		}
		ifc := newInterface("file", topology.Out, desc)
		ifc.Queue = squeue.New(qsize)
		ifc.Info = f
		ifc.Write = fileWrite
		ifc.Cleanup = fileCleanup
		ifc.Cancel = func() {}
		return []*topology.Interface{ifc}, nil
	}
}

func fileCleanup(ifc *topology.Interface) {
	if f, ok := ifc.Info.(*os.File); ok {
		f.Close()
	}
}

func fileRead(ctx context.Context, ifc *topology.Interface) error {
	f := ifc.Info.(*os.File)
	rdr := frame.NewReader(ifc.Queue, ifc.ID)
	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
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

func fileWrite(ctx context.Context, ifc *topology.Interface) error {
	f := ifc.Info.(*os.File)
	for {
		h := ifc.Queue.Pop()
		if h == nil {
			return nil
		}
		_, err := f.Write(h.Bytes())
		ifc.Queue.Release(h)
		if err != nil {
			return trace.Wrap(err)
		}
	}
}
