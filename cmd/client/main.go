package main

import "timeline/cmd/client/cmd"

func main() {
	cmd.Execute()
}
