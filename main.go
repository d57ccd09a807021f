package main

import "github.com/chevolec/portalgen/cmd"

func main() {
	cmd.Execute()
}
