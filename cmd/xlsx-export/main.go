package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/paneltrack_backend/config"
	"bitbucket.org/mmdatafocus/paneltrack_backend/models"
	"bitbucket.org/mmdatafocus/paneltrack_backend/models/exchange"
	"bitbucket.org/mmdatafocus/paneltrack_backend/utils"
)

func main() {
	outPath := flag.String("out", "", "Required: output .xlsx path")
	prune := flag.Bool("prune-photos", false, "Clear stored photo references after embedding them")
	flag.Parse()

	if strings.TrimSpace(*outPath) == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	config.ConnectRedisWithRetry()

	ctx := context.Background()
	records, err := models.GetInspectionRecords(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load records: %v\n", err)
		os.Exit(1)
	}
	reports, err := models.GetReportRecords(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load reports: %v\n", err)
		os.Exit(1)
	}

	outcome, err := exchange.ExportWorkbook(ctx, records, reports, exchange.ExportOptions{
		PhotoStore:  &utils.GCSPhotoStore{Prefix: "boards"},
		PrunePhotos: *prune,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		os.Exit(1)
	}
	defer outcome.File.Close()

	if err := outcome.File.SaveAs(*outPath); err != nil {
		fmt.Fprintf(os.Stderr, "save document: %v\n", err)
		os.Exit(1)
	}

	if *prune {
		if err := models.SaveInspectionRecords(ctx, outcome.Records); err != nil {
			fmt.Fprintf(os.Stderr, "save pruned records: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("exported %d boards, %d reports, %d embedded photos to %s\n",
		len(records), len(reports), len(outcome.EmbeddedPhotos), *outPath)
}
