// Command arithctl evaluates arithmetic operations locally or against a
// running arithmetic-dispatcher over NATS.
package main

import (
	"errors"
	"fmt"
	"os"
)

var exit = os.Exit

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errFailedOutcome) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		exit(1)
	}
}
