package main

import (
	"os"

	"github.com/qltriage/qltriage/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
