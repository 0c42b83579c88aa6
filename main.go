package main

import "github.com/quantkit/quantkit/cmd"

func main() {
	cmd.Execute()
}
