package main

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/example/calcapi/internal/cache"
)

// listenAddr turns a port into a listen address, defaulting to 8080.
func listenAddr(port string) string {
	if port == "" {
		port = "8080"
	}
	return ":" + port
}

// purgeEvery drops expired cache entries every interval until the returned func is called.
func purgeEvery(c *cache.Cache, interval time.Duration, logger zerolog.Logger) func() {
	stop := make(chan struct{})
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				if n := c.Purge(); n > 0 {
					logger.Debug().Str("event", "cache_purge").Int("removed", n).Msg("")
				}
			}
		}
	}()
	return func() { close(stop) }
}
