package main

import "github.com/Beastly713/ssss/cmd"

func main() {
	cmd.Execute()
}
