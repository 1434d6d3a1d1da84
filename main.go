package main

import "github.com/storelab-dev/checkout-runner/pkg/cli"

func main() {
	cli.Execute()
}
