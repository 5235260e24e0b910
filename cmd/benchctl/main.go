package main

import "github.com/arloliu/go-bench/cmd/benchctl/cmd"

func main() {
	cmd.Execute()
}
