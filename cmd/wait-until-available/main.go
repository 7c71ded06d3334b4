package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"gitlab.com/dirk.krummacker/jobapp-helper/internal/config"
)

// Usage example on the command line:
// > SERVICE_URL=http://localhost:8080 go run main.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	totalWaitTime := 0
	for {
		res, err := http.Get(cfg.ServiceURL + "/health")
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				fmt.Println(res.Status)
				break
			}
			fmt.Println(res.Status)
		} else {
			fmt.Println(err)
		}
		totalWaitTime += 5
		fmt.Printf("Waiting %d seconds", totalWaitTime)
		fmt.Println()
		time.Sleep(5 * time.Second)
	}
}
