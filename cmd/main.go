package main

import (
	"fmt"
	"os"

	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "invoice-service: %v\n", err)
		os.Exit(1)
	}
}
