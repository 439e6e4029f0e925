package main

import (
	"context"
	"flag"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"badam/bot"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:62743", "server address to connect to")
	count := flag.Int("n", 1, "number of bots to run")
	name := flag.String("name", "Bot", "bot nickname prefix")
	delay := flag.Duration("delay", 500*time.Millisecond, "think delay before each move")
	flag.Parse()

	log := logrus.New()

	var wg sync.WaitGroup
	for i := 0; i < *count; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			b := bot.New(fmt.Sprintf("%s_%d", *name, id), *delay, nil)
			results, err := b.Play(context.Background(), *addr, log)
			if err != nil {
				log.WithError(err).WithField("bot", b.Name).Error("bot stopped")
				return
			}
			log.WithFields(logrus.Fields{
				"bot":  b.Name,
				"rank": results,
			}).Info("game over")
		}(i)
	}
	wg.Wait()
}
