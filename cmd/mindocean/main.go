package main

import (
	"os"

	"github.com/mindocean/mindocean/mindservice"
)

func main() {
	if err := mindservice.Run(); err != nil {
		os.Exit(1)
	}
}
