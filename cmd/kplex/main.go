// Command kplex multiplexes NMEA-0183 sentences between serial,
// network, pseudoterminal, file and Seatalk interfaces.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/sirupsen/logrus"

	"github.com/kplexgo/kplex/internal/config"
	"github.com/kplexgo/kplex/internal/engine"
	"github.com/kplexgo/kplex/internal/logging"
	"github.com/kplexgo/kplex/internal/signals"
	"github.com/kplexgo/kplex/internal/squeue"
	"github.com/kplexgo/kplex/internal/topology"
	"github.com/kplexgo/kplex/internal/transport"
	"github.com/kplexgo/kplex/internal/worker"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the testable body of main: it returns the process exit code
// spec.md §6 defines (0 normal, 1 configuration/init/fatal-runtime).
func run(args []string) int {
	app := kingpin.New("kplex", "NMEA-0183 multiplexer")
	background := app.Flag("background", "run as a daemon, logging to syslog").Short('b').Bool()
	logTo := app.Flag("logto", "syslog facility when -b is set").Short('l').String()
	qsize := app.Flag("qsize", "bounded queue capacity per interface").Short('q').Int()
	confFile := app.Flag("config", "config file path").Short('f').String()
	specs := app.Arg("interface", "interface specifier type:k=v,...").Strings()

	if _, err := app.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	global := config.Global{QSize: config.DefaultQueueSize, LogTo: "user"}
	var descs []config.Descriptor

	if path := config.DiscoverPath(*confFile); path != "" {
		fileGlobal, fileDescs, err := config.ParseFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if fileGlobal.LogTo == "" {
			fileGlobal.LogTo = global.LogTo
		}
		global = fileGlobal
		descs = fileDescs
	}

	if *background {
		global.Background = true
	}
	if *logTo != "" {
		global.LogTo = *logTo
	}
	if *qsize > 0 {
		if *qsize < 2 {
			fmt.Fprintln(os.Stderr, "qsize must be at least 2")
			return 1
		}
		global.QSize = *qsize
	}

	for _, s := range *specs {
		d, err := config.ParseSpecifier(s)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		descs = append(descs, d)
	}

	facility, err := config.Facility(global.LogTo)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log, err := logging.New(global.Background, facility)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return runTopology(log, global, descs)
}

func runTopology(log *logrus.Logger, global config.Global, descs []config.Descriptor) int {
	if len(descs) == 0 {
		log.Error("no interfaces configured")
		return 1
	}

	central := squeue.New(global.QSize)
	topo := topology.New()

	var ifcs []*topology.Interface
	for _, d := range descs {
		opened, err := transport.Open(d, central, global.QSize)
		if err != nil {
			log.WithError(err).Errorf("initializing interface at line %d", d.Line)
			// Tear down every interface already opened this run before
			// exiting, mirroring the source's iface_destroy sweep over
			// lists.initialized on a fatal init error.
			for _, ifc := range ifcs {
				if ifc.Cleanup != nil {
					ifc.Cleanup(ifc)
				}
			}
			return 1
		}
		for _, ifc := range opened {
			topo.Register(ifc)
			ifcs = append(ifcs, ifc)
		}
	}

	bridge := signals.NewBridge()
	go bridge.Watch(topo)

	ctx := context.Background()
	for _, ifc := range ifcs {
		go worker.Run(ctx, ifc, topo)
	}

	go engine.Run(central, topo)

	worker.Reap(topo, func(ifc *topology.Interface) {
		if ifc.Cancel != nil {
			ifc.Cancel()
		}
	}, func(ifc *topology.Interface) {
		log.Infof("interface %d (%s) reaped", ifc.ID, ifc.Kind)
	})

	bridge.Stop()
	log.Info("shutdown complete")
	return 0
}
