package main

import "github.com/popgraph/vgtyper/cmd"

func main() {
	cmd.Execute()
}
