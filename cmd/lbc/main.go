// Command lbc is the LightBASIC ahead-of-time compiler.
package main

import (
	"os"

	"github.com/lightbasic/lbc/cmd/lbc/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
