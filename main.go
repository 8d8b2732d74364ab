// Package main is the entry point for roisim, a sampled region-of-interest
// simulation driver. CLI handling lives in the cmd package.
package main

import "github.com/sarchlab/roisim/cmd"

func main() {
	cmd.Execute()
}
