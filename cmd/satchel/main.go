// Command satchel manages dynamic record properties and their catalog.
package main

import "github.com/mesh-intelligence/satchel/internal/cli"

func main() {
	cli.Execute()
}
