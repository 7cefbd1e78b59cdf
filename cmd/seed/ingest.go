package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/wearella/marketpulse/internal/cache"
	"github.com/wearella/marketpulse/internal/config"
	"github.com/wearella/marketpulse/internal/domain"
	"github.com/wearella/marketpulse/internal/ingest"
	"github.com/wearella/marketpulse/internal/pipeline"
	"github.com/wearella/marketpulse/internal/repository/mongodb"
	"github.com/wearella/marketpulse/internal/service"
	"github.com/wearella/marketpulse/internal/skumap"
)

// fileMeta is parsed from a seed filename:
// <platform>_<reportType>_<start>_<end>.<csv|xlsx>
type fileMeta struct {
	platform   domain.Platform
	reportType domain.ReportType
	start      time.Time
	end        time.Time
}

func parseFileMeta(filename string) (fileMeta, error) {
	var meta fileMeta
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	parts := strings.Split(base, "_")
	if len(parts) != 4 {
		return meta, fmt.Errorf("filename %s does not match <platform>_<reportType>_<start>_<end>", filename)
	}

	platform, err := domain.ParsePlatform(parts[0])
	if err != nil {
		return meta, err
	}
	reportType, err := domain.ParseReportType(parts[1])
	if err != nil {
		return meta, err
	}
	start, err := time.Parse(domain.DateRangeLayout, parts[2])
	if err != nil {
		return meta, fmt.Errorf("invalid start date in %s: %w", filename, err)
	}
	end, err := time.Parse(domain.DateRangeLayout, parts[3])
	if err != nil {
		return meta, fmt.Errorf("invalid end date in %s: %w", filename, err)
	}

	meta = fileMeta{platform: platform, reportType: reportType, start: start, end: end}
	return meta, nil
}

func runIngest(c *cli.Context) error {
	cfg := config.Load()
	dir := c.String("dir")
	dryRun := c.Bool("dry-run")

	table := skumap.LoadFile(cfg.App.MappingFile)
	aggregator := pipeline.NewAggregator(table)

	var uploads *service.UploadService
	if !dryRun {
		db, err := mongodb.NewDB(&cfg.Mongo)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Close(ctx)
		}()
		db.EnsureIndexes(c.Context)
		uploads = service.NewUploadService(mongodb.NewUploadRecordRepository(db), aggregator, cache.NewNoopReportCache(), nil)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read seed directory %s: %w", dir, err)
	}

	processed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv", ".xlsx", ".xls":
		default:
			continue
		}

		meta, err := parseFileMeta(entry.Name())
		if err != nil {
			log.Printf("skipping %s: %v", entry.Name(), err)
			continue
		}

		path := filepath.Join(dir, entry.Name())
		rows, err := ingest.ReadFile(path)
		if err != nil {
			log.Printf("skipping %s: %v", entry.Name(), err)
			continue
		}

		if dryRun {
			record, err := aggregator.BuildRecord(rows, meta.platform, meta.reportType, meta.start, meta.end, entry.Name())
			if err != nil {
				log.Printf("skipping %s: %v", entry.Name(), err)
				continue
			}
			log.Printf("%s: %d rows, %d skus, sales=%.2f (dry run)",
				entry.Name(), len(rows), len(record.Skus), record.TotalSales)
			processed++
			continue
		}

		if _, err := uploads.Process(c.Context, service.UploadRequest{
			Platform:   meta.platform,
			ReportType: meta.reportType,
			StartDate:  meta.start,
			EndDate:    meta.end,
			Filename:   entry.Name(),
			Rows:       rows,
			Overwrite:  true,
		}); err != nil {
			return fmt.Errorf("failed to ingest %s: %w", entry.Name(), err)
		}
		log.Printf("ingested %s (%d rows)", entry.Name(), len(rows))
		processed++
	}

	log.Printf("ingest complete: %d file(s) processed", processed)
	return nil
}

func checkMapping(path string) error {
	table := skumap.LoadFile(path)
	if table.Empty() {
		return fmt.Errorf("mapping table at %s is empty or unreadable", path)
	}
	log.Printf("mapping table loaded: %d local SKUs, %d aliases", table.Len(), table.AliasCount())

	for _, column := range skumap.AliasColumns() {
		covered := table.PlatformAliasCount(column)
		log.Printf("  %-10s %d alias(es)", column, covered)
	}
	return nil
}
