// Command crawler runs the multi-threaded web crawler.
package main

import "github.com/icscrawl/crawler/internal/cli"

func main() {
	cli.Execute()
}
