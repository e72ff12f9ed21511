package main

import "github.com/Norgate-AV/wclang/cmd"

func main() {
	cmd.Execute()
}
