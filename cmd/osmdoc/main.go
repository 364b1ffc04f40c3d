package main

import (
	"github.com/omniscale/osmdoc/cmd"
)

func main() {
	cmd.Main(cmd.PrintCmds)
}
