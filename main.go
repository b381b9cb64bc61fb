package main

import "github.com/stonelake/ticketmap/cmd"

func main() {
	cmd.Execute()
}
