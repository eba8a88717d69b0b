// Command mctransport runs fixed-source Monte Carlo transport problems.
package main

import "github.com/profugus/mctransport/cmd/mctransport/cmd"

func main() {
	cmd.Execute()
}
