package main

import "github.com/coopnet/intranet-api/cmd"

func main() {
	cmd.Execute()
}
