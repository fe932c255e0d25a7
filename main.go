package main

import "github.com/sitegrade/sitegrade-cli/cmd"

// execCmd is swappable so main stays testable.
var execCmd = cmd.Execute

func main() {
	execCmd()
}
