package main

import "github.com/lepinkainen/steamshelf/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
