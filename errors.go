/*
Copyright © 2026 nprole
*/

package main

import (
	"log"
	"time"
)

const logDate string = `2006-01-02T15:04:05.000-07:00`

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}
