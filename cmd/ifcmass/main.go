package main

import "ifcmass/cmd/ifcmass/cmd"

func main() {
	cmd.Execute()
}
