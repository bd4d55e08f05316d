package main

import (
	"os"

	"github.com/quillmem/quill/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
