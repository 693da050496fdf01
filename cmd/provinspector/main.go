// Command provinspector runs the StreamVizzard provenance service: it
// translates debugger events into a W3C PROV graph stored in a Bolt-reachable
// property graph database.
package main

import "github.com/dbis-ilm/streamvizzard-provinspector/cli"

func main() {
	cli.Execute()
}
