// Command assigncategories gives listings a random category from the fixed
// category list.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"wanderlust/pkg/container"
	"wanderlust/pkg/logger"
)

func main() {
	onlyMissing := flag.Bool("only-missing", false, "Only touch listings without a valid category")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))

	c, err := container.NewContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize container")
	}
	defer c.Cleanup()

	ctx := log.Logger.WithContext(context.Background())
	updated, err := c.CategoryAssigner.Assign(ctx, *onlyMissing)
	if err != nil {
		log.Error().Err(err).Int("updated", updated).Msg("Category assignment failed")
		c.Cleanup()
		os.Exit(1)
	}
	fmt.Printf("Assigned categories to %d listings\n", updated)
}
