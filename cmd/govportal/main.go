// govportal — San Andreas government portal backend.
package main

import (
	"fmt"
	"os"

	"github.com/sanandreas/govportal/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}
