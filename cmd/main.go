package main

import (
	cmd "github.com/kerbaras/companion/cmd/companion"
)

func main() {
	cmd.Execute()
}
