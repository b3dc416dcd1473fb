package main

import "github.com/theirongolddev/quotekit/cmd"

func main() {
	cmd.Execute()
}
