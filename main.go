package main

import "github.com/KaramelBytes/tipscope/cmd"

func main() {
	cmd.Execute()
}
