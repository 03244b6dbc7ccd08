package main

import "github.com/secretbin/secretbin-go/internal/cli"

func main() {
	cli.Execute()
}
