package main

import "github.com/naka-gawa/repokeeper/cmd"

func main() {
	cmd.Execute()
}
