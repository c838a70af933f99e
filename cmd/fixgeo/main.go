// Command fixgeo re-geocodes listings still placed at (0,0), either inline or
// by handing the run to the worker.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"wanderlust/internal/infrastructure/queue"
	"wanderlust/pkg/container"
	"wanderlust/pkg/logger"
)

func main() {
	limit := flag.Int("limit", 0, "Maximum listings to repair (0 = all)")
	enqueue := flag.Bool("enqueue", false, "Queue the repair for the worker instead of running it here")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))

	c, err := container.NewContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize container")
	}
	defer c.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.Logger.WithContext(ctx)

	if *enqueue {
		task, err := queue.NewFixGeoTask(*limit)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build task")
		}
		info, err := c.AsynqClient.EnqueueContext(ctx, task)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to enqueue geo repair")
		}
		fmt.Printf("Queued geo repair as task %s on %q\n", info.ID, info.Queue)
		return
	}

	report, err := c.GeoRepairer.Run(ctx, *limit)
	if err != nil {
		log.Error().Err(err).Msg("Geo repair stopped early")
	}
	fmt.Printf("Scanned %d, fixed %d, unresolved %d\n", report.Scanned, report.Fixed, report.Unresolved)
	if err != nil {
		c.Cleanup()
		os.Exit(1)
	}
}
