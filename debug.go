package addrmap

import (
	"log"
	"os"

	"github.com/kr/pretty"
	"github.com/mewkiz/pkg/term"
)

// dbg logs debug messages to standard error with an "addrmap:" prefix and no
// timestamp (flags=0). Only Dump writes to it, so the package prints nothing
// unless Dump is called.
var dbg = log.New(os.Stderr, term.MagentaBold("addrmap:")+" ", 0)

// Dump writes a pretty-printed representation of every node in m to dbg, for
// interactive debugging; it is never called by the package itself.
func (m *AddressMap[A, T]) Dump() {
	for _, n := range m.m.Nodes() {
		dbg.Printf("%# v\n", pretty.Formatter(n))
	}
}
