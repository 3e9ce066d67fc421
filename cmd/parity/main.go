package main

import "github.com/pixelwerk/augment/cmd/parity/cmd"

func main() {
	cmd.Execute()
}
