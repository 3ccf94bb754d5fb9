package main

import "github.com/baliciaga/passwordless/cmd/authctl/cmd"

func main() {
	cmd.Execute()
}
