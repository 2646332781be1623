package main

import (
	"os"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
