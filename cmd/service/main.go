package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/VictoriaMetrics/metrics"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/config"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/kvstore"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/logging"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/service"
)

// Usage example on the command line:
// > PORT=8080 DBDRIVER=mysql DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 GIN_MODE=release GIN_LOGGING=OFF go run main.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(os.Stderr, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatal(err)
	}
	db, err := service.CreateDatabase(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	set := metrics.NewSet()
	s := service.New(kvstore.Instrument(db, set), service.Options{
		Logger:     logger,
		Metrics:    set,
		GinLogging: !strings.EqualFold(cfg.GinLogging, "off"),
	})
	router := s.SetupHttpRouter()
	logger.Info("starting service", "port", cfg.Port, "driver", cfg.DBDriver)
	if err := router.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Error("service stopped", "err", err)
		os.Exit(1)
	}
}
