package main

import "github.com/cheerioskun/textfinder/internal/cmd"

func main() {
	cmd.Execute()
}
