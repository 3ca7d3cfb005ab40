package main

import (
	"github.com/thechosenone98/MP3Journaling/cmd"
	"github.com/thechosenone98/MP3Journaling/logger"
)

func main() {
	defer logger.Sync()
	cmd.Execute()
}
