package config

import (
	"flag"
	"os"
	"time"

	"github.com/offcampus/rollcall/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   bind address of the HTTP API (default from Config)
//	-d string   PostgreSQL DSN (default from Config)
//	-k string   JWT signing secret (default from Config)
//	-t int      access token validity in seconds (default from Config)
//	-r int      refresh token validity in seconds (default from Config)
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k", "-t", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.EndpointAddr, "a", cfg.EndpointAddr, "bind address of the HTTP API")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.SecretKey, "k", cfg.SecretKey, "JWT signing secret")
	accessValidity := fs.Int("t", int(cfg.AccessTokenValidityDuration.Seconds()), "access token validity (in seconds)")
	refreshValidity := fs.Int("r", int(cfg.RefreshTokenValidityDuration.Seconds()), "refresh token validity (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.AccessTokenValidityDuration = time.Duration(*accessValidity) * time.Second
	cfg.RefreshTokenValidityDuration = time.Duration(*refreshValidity) * time.Second
}
