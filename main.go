package main

import (
	"log"

	"github.com/mosaicdim/recents/cmd/recents"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	recents.Execute()
}
