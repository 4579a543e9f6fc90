package main

import (
	"github.com/atlasocr/wasl/cmd/wasl/cmd"
)

func main() {
	cmd.Execute()
}
