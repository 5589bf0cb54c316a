// Command shopkeep manages the CSV records of a retail and repair shop.
package main

import "github.com/mesh-intelligence/shopkeep/internal/cli"

func main() {
	cli.Execute()
}
