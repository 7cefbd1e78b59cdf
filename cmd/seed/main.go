// Command seed loads historical report files into the database from the
// command line, bypassing the HTTP upload endpoint. Filenames follow
// <platform>_<reportType>_<start>_<end>.<csv|xlsx>, e.g.
// myntra_orders_2025-06-01_2025-06-30.csv.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Load report files and inspect the SKU mapping table",
		Commands: []*cli.Command{
			{
				Name:  "mapping",
				Usage: "SKU mapping table utilities",
				Subcommands: []*cli.Command{
					{
						Name:      "check",
						Usage:     "Load a mapping CSV and report its alias coverage",
						ArgsUsage: "<mapping-file>",
						Action:    runMappingCheck,
					},
				},
			},
			{
				Name:  "ingest",
				Usage: "Aggregate report files from a directory into the database",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Usage:   "Directory containing report files",
						Value:   "./data/seeds/reports",
						EnvVars: []string{"SEED_REPORTS_DIR"},
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Parse and aggregate without writing to the database",
					},
				},
				Action: runIngest,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runMappingCheck(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("usage: seed mapping check <mapping-file>")
	}
	return checkMapping(path)
}
