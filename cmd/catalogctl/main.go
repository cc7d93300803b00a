package main

import (
	"fmt"
	"os"

	"github.com/yanizio/catalog-console/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "catalogctl:", err)
		os.Exit(1)
	}
}
