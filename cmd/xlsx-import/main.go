package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bitbucket.org/mmdatafocus/paneltrack_backend/config"
	"bitbucket.org/mmdatafocus/paneltrack_backend/models"
	"bitbucket.org/mmdatafocus/paneltrack_backend/models/exchange"
	"bitbucket.org/mmdatafocus/paneltrack_backend/utils"
	"github.com/xuri/excelize/v2"
)

func main() {
	filePath := flag.String("file", "", "Required: path to the .xlsx document")
	confirmVersion := flag.Bool("confirm-version", false, "Accept a document declaring a different format version")
	dryRun := flag.Bool("dry-run", false, "Decode and merge without persisting")
	actor := flag.String("actor", "cli", "Actor recorded on the import run")
	flag.Parse()

	if strings.TrimSpace(*filePath) == "" {
		fmt.Fprintln(os.Stderr, "--file is required")
		os.Exit(1)
	}

	f, err := excelize.OpenFile(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open document: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	config.ConnectRedisWithRetry()

	ctx := context.Background()
	existing, err := models.GetInspectionRecords(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load records: %v\n", err)
		os.Exit(1)
	}
	existingReports, err := models.GetReportRecords(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load reports: %v\n", err)
		os.Exit(1)
	}

	opts := exchange.ImportOptions{
		ConfirmVersionMismatch: func(found string, supported string) bool {
			if *confirmVersion {
				return true
			}
			fmt.Fprintf(os.Stderr, "document declares format version %q, supported is %q; rerun with --confirm-version to proceed\n", found, supported)
			return false
		},
		PhotoStore: &utils.GCSPhotoStore{Prefix: "boards"},
		FileName:   filepath.Base(*filePath),
		Actor:      *actor,
	}
	outcome, err := exchange.ImportWorkbook(ctx, f, existing, existingReports, opts)
	if err != nil {
		if errors.Is(err, exchange.ErrVersionDeclined) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "import: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(outcome.Result.Summary())
	for _, w := range outcome.Result.Warnings {
		fmt.Println("warning:", w)
	}

	if *dryRun {
		fmt.Println("dry run; nothing persisted")
		return
	}

	if err := models.SaveInspectionRecords(ctx, outcome.Records); err != nil {
		fmt.Fprintf(os.Stderr, "save records: %v\n", err)
		os.Exit(1)
	}
	if err := models.SaveReportRecords(ctx, outcome.Reports); err != nil {
		fmt.Fprintf(os.Stderr, "save reports: %v\n", err)
		os.Exit(1)
	}
	exchange.RecordImportRun(ctx, opts, outcome.Result)
}
