package main

import "github.com/pawonsalam/restosuite/cmd"

func main() {
	cmd.Execute()
}
