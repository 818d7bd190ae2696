package main

import (
	"oss.terrastruct.com/dragblock/dbcli"
	"oss.terrastruct.com/dragblock/lib/xmain"
)

func main() {
	xmain.Main(dbcli.Run)
}
