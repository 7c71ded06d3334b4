package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gitlab.com/dirk.krummacker/jobapp-helper/internal/config"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/recordstore"
)

// Usage example on the command line:
// > SERVICE_URL=http://localhost:8080 go run main.go -dir=exports
func main() {
	dirPtr := flag.String("dir", ".", "the directory to write the CSV exports to")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	for _, collection := range []string{"contacts", "jobs"} {
		path, err := download(cfg.ServiceURL, collection, *dirPtr)
		if err != nil {
			fmt.Println("could not export", collection, err)
			continue
		}
		fmt.Println("exported", collection, "to", path)
	}
}

// download saves the CSV export of collection in dir and returns the path of the file.
func download(serviceURL string, collection string, dir string) (string, error) {
	res, err := http.Get(fmt.Sprintf("%s/%s/export", serviceURL, collection))
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", res.Status)
	}

	filename := recordstore.ExportFilename(collection, time.Now())
	if _, params, err := mime.ParseMediaType(res.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = filepath.Base(params["filename"])
	}
	path := filepath.Join(dir, filename)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	if _, err := io.Copy(file, res.Body); err != nil {
		return "", err
	}
	return path, nil
}
