// Command innkeeper manages hotels, customers and reservations stored as JSON
// documents on a configurable backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	root := newRootCommand(a)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	err = errors.Join(err, a.close())
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "innkeeper: %v\n", err)
		return 1
	}
	return 0
}
