package main

import (
	"os"

	"github.com/ogauthier/obsched/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
