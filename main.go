package main

import "github.com/mr-shifu/pedersen-commit/cmd"

func main() {
	cmd.Execute()
}
