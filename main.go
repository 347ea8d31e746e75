package main

import "github.com/Mohsinsiddi/w3dapp/cmd"

func main() {
	cmd.Execute()
}
