// Command imdm validates structured and file-backed data samples against
// declarative schemas.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrymomot/imdm/internal/commands"
)

func main() {
	if err := commands.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
