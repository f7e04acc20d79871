package main

import (
	"log"
	"os"
	"os/signal"

	"marzipan/bot"
	"marzipan/config"
	"marzipan/dal"

	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db := dal.InitDB(cfg.DBPath)

	b := bot.New(cfg.Token, cfg.GuildID, cfg.CheckInterval/2, db)
	defer b.Shutdown(cfg.GuildID)

	// SkipIfStillRunning keeps sweeps from overlapping if announcements
	// take longer than the interval.
	scheduler := cron.New(
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	scheduler.Schedule(cron.Every(cfg.CheckInterval), cron.FuncJob(b.CheckBirthdays))
	scheduler.Start()
	defer scheduler.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
}
