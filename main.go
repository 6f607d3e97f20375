package main

import "github.com/opsforge/sage/cmd"

func main() {
	cmd.Execute()
}
