// Command blcspp preprocesses BLCS source into plain scripting-language
// output: usage "blcspp PATH [-h] [-d] (-w | -X) [-q] [-e]".
package main

import "os"

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}
