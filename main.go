package main

import "github.com/da0bi/psysmon/cmd"

func main() {
	cmd.Execute()
}
