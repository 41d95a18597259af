package main

import (
	"github.com/admi-n/openai-socks/src/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		cmd.PrintFatal(err)
	}
}
