package main

import (
	"os"
	"time"

	"github.com/kilianp07/flightrecovery/cmd"
	"github.com/kilianp07/flightrecovery/core/model"
	"github.com/kilianp07/flightrecovery/core/monitoring"
	"github.com/kilianp07/flightrecovery/infra/logger"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logger.New("main").Errorf("%v", err)
		monitoring.CaptureException(err, map[string]string{"module": "main"})
		monitoring.Flush(2 * time.Second)
		os.Exit(model.ErrorCode)
	}
}
