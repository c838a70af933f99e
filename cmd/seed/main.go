// Command seed imports listings from an .xlsx workbook. Every imported
// listing is owned by an existing user.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"wanderlust/internal/domains/user"
	"wanderlust/pkg/container"
	"wanderlust/pkg/logger"
)

func main() {
	file := flag.String("file", "", "Path to the .xlsx workbook")
	owner := flag.String("owner", "", "Username that will own the imported listings")
	flag.Parse()

	if *file == "" || *owner == "" {
		fmt.Fprintln(os.Stderr, "Usage: seed -file <listings.xlsx> -owner <username>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))

	if err := run(*file, *owner); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path, ownerName string) error {
	c, err := container.NewContainer()
	if err != nil {
		return fmt.Errorf("initialize container: %w", err)
	}
	defer c.Cleanup()

	ctx := log.Logger.WithContext(context.Background())

	owner, err := c.UserRepo.FindByUsername(ctx, ownerName)
	if errors.Is(err, user.ErrUserNotFound) {
		return fmt.Errorf("owner %q does not exist, create it with adduser first", ownerName)
	}
	if err != nil {
		return fmt.Errorf("find owner: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	report, err := c.SheetImporter.Import(ctx, f, owner.ID)
	for _, skipped := range report.Skipped {
		fmt.Printf("row %d skipped: %v\n", skipped.Row, skipped.Err)
	}
	fmt.Printf("Imported %d listings, skipped %d rows\n", report.Imported, len(report.Skipped))
	return err
}
