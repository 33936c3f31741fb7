// Command carepath is the operator CLI for one-shot symptom assessments.
package main

import (
	"fmt"
	"os"

	v "github.com/linnemanlabs/go-core/version"

	"github.com/linnemanlabs/carepath/internal/cli"
)

func main() {
	v.AppName = "carepath"
	v.Component = "cli"

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
