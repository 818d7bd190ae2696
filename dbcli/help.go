package dbcli

import (
	"fmt"
	"path/filepath"

	"oss.terrastruct.com/dragblock/lib/version"
	"oss.terrastruct.com/dragblock/lib/xmain"
)

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `%[1]s %[2]s
Usage:
  %[1]s play [--axis=all] [--theme=...] [--width=W --height=H]
  %[1]s replay [--watch] script.json [trace.txt]
  %[1]s validate script.json
  %[1]s handles [--width=W --height=H --handle-size=S]

%[1]s moves and resizes a rectangular block through its nine handles: eight resize
handles on its corners and edges and a center handle that drags it.

Use - to have %[1]s read a script from stdin or write a trace to stdout. The trace
defaults to stdout.

Flags:
%[3]s

Subcommands:
  %[1]s play - Opens an interactive block in the terminal, drag its handles with the mouse
  %[1]s replay script.json [trace.txt] - Replays a gesture script and writes the block after every event
  %[1]s validate script.json - Validates a gesture script
  %[1]s handles - Prints where every handle sits on a block
  %[1]s version - Prints the version
`, filepath.Base(ms.Name), version.Version, ms.Opts.Help())
}
