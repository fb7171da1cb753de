package main

import "github.com/veracode/cli-installer/cmd/veracode-installer/cmd"

func main() {
	cmd.Execute()
}
