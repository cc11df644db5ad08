package main

import (
	"time"

	"github.com/bloodlink-app/bloodlink-server/cmd"
	"github.com/bloodlink-app/bloodlink-server/util"
)

func main() {
	data := map[string]interface{}{
		"startTime": time.Now().Format("January 02, 2006 - 03:04:05 PM MST"),
		"message":   "Starting bloodlink backend server . . .",
	}

	util.PrettyPrint(data)
	cmd.New().Execute()
}
