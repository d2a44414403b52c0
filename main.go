package main

import (
	cmd "github.com/lexanon/lexanon/cmd/lexanon"
	"github.com/lexanon/lexanon/internal"
)

var log = internal.GetLogger()

func main() {
	log.Info("Starting lexanon")
	cmd.Execute()
}
