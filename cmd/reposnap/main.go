package main

import "reposnap/internal/cmd"

func main() {
	cmd.Execute()
}
