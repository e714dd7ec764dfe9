package main

import (
	"os"

	"github.com/sportzvillage/svassist/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
