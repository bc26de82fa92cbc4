// Package config loads ridgedb's runtime configuration from flags,
// environment variables, and an optional config file, in that precedence
// order: flags given on the command line win, then RIDGEDB_* environment
// variables, then the config file, then the flag defaults.
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds everything cmd/ridgedb needs to start the database.
type Config struct {
	// DBPath is the page file ridgedb opens or creates.
	DBPath string
	// CacheCapacity bounds the pager's resident page count.
	CacheCapacity int
	// ServerAddr, when non-empty, starts the TCP front-end instead of
	// the interactive REPL.
	ServerAddr string
}

// Load parses args (normally os.Args[1:]) plus ridgedb.yaml/env
// overrides into a Config.
func Load(args []string) (Config, error) {
	fs := pflag.NewFlagSet("ridgedb", pflag.ContinueOnError)
	fs.String("db", "ridgedb.db", "path to the database file")
	fs.Int("cache-capacity", 256, "pager LRU cache capacity, in pages")
	fs.String("server", "", "listen address for the TCP front-end, e.g. :4079 (empty runs the REPL)")
	fs.String("config", "", "optional path to a ridgedb.yaml config file")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("ridgedb")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, err
	}

	if cfgFile, _ := fs.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	} else {
		v.SetConfigName("ridgedb")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return Config{}, err
			}
		}
	}

	return Config{
		DBPath:        v.GetString("db"),
		CacheCapacity: v.GetInt("cache-capacity"),
		ServerAddr:    v.GetString("server"),
	}, nil
}
