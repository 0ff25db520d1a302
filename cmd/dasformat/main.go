package main

import "github.com/DAS-RCN/RCN-DASformat/cmd/dasformat/cmd"

func main() {
	cmd.Execute()
}
