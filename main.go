package main

//go:generate swag init -g cmd/serve.go

import "github.com/satheeshds/schemes/cmd"

func main() {
	cmd.Execute()
}
