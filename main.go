package main

import "github.com/kamusis/iconhash-cli/cmd"

func main() {
	cmd.Execute()
}
