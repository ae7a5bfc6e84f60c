package main

import "github.com/bizpulse/bizdash/cmd"

func main() {
	cmd.Execute()
}
