package main

import "flakelab/cmd"

func main() {
	cmd.Execute()
}
