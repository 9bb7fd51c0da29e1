// Command xpevent creates, signals and probes named cross-process events.
//
// Usage:
//
//	xpevent sleep --name evt-1 --count 3   # create, then report each wake
//	xpevent wake --name evt-1               # open an existing event and signal it
//	xpevent probe --name evt-1              # report whether the event exists
//	xpevent name [prefix]                   # print a fresh unique event name
package main

import (
	"os"
	"path/filepath"

	"github.com/obinnaokechukwu/xpevent/internal/cli"
)

func main() {
	// Make args[0] just the name of the executable since it is used in logs.
	os.Args[0] = filepath.Base(os.Args[0])

	os.Exit(cli.Main(os.Args))
}
