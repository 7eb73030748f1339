// Package config is the environment-variable configuration for the factdb
// command, loaded with go-simpler.org/env struct tags.
package config

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/pkg/profile"
	"go-simpler.org/env"

	"facio.dev"
	"facio.dev/appdata"
	"facio.dev/chk"
	"facio.dev/config/keyvalue"
	fenv "facio.dev/env"
)

// C is the configuration for the factdb command. Note that it is absolutely
// minimal: schema declarations are not part of it, and they are not read
// back from the database either; cmd/factdb starts every run with an empty
// schema.
type C struct {
	AppName  string `env:"APP_NAME" default:"factdb"`
	DataDir  string `env:"DATA_DIR" usage:"badger data directory; defaults to the OS app-data dir"`
	InstID   uint32 `env:"INSTANCE_ID" default:"1" usage:"instance id used for EID allocation"`
	Pprof    bool   `env:"PPROF" default:"false" usage:"enable pprof on 127.0.0.1:6060"`
	MemLimit int64  `env:"MEM_LIMIT" default:"250000000" usage:"set memory limit, default is 250Mb"`
}

func New() (c *C) {
	if len(os.Args) == 2 && os.Args[1] == "version" {
		fmt.Println(facio.Version)
		os.Exit(0)
	}
	c = &C{}
	if err := env.Load(c, &env.Options{SliceSep: ","}); chk.T(err) {
		return
	}
	if c.DataDir == "" {
		c.DataDir = appdata.Dir(c.AppName, false)
	}
	envPath := filepath.Join(c.DataDir, ".env")
	if _, statErr := os.Stat(envPath); statErr == nil {
		var e fenv.Env
		if e, statErr = fenv.GetEnv(envPath); chk.T(statErr) {
			return
		}
		if err := env.Load(c, &env.Options{Source: e, SliceSep: ","}); chk.T(err) {
			return
		}
	}
	if len(os.Args) == 2 && os.Args[1] == "help" {
		fmt.Printf("\nenvironment variables that configure %s\n\n", c.AppName)
		env.Usage(c, os.Stdout, nil)
		fmt.Printf(`
commands:

  - print this help message

      %s help

  - print version info

      %s version

  - print environment variables as a shell script that can be edited to set the configuration

      %s env

  - transact facts on an entity: "attr=value" pairs, one eid per invocation

      %s <attr>=<value> [<attr>=<value> ...]

  - look up an entity by a unique attribute and print its value of that
    attribute (its other attributes are not printed)

      %s --pull <attr>=<value>

`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
		os.Exit(0)
	}
	if len(os.Args) == 2 && os.Args[1] == "env" {
		keyvalue.PrintEnv(*c, os.Stdout)
		os.Exit(0)
	}
	// now we have the config, set up all the things here rather than somewhere unrelated.
	if c.Pprof {
		defer profile.Start(profile.MemProfile).Stop()
		go func() {
			chk.E(http.ListenAndServe("127.0.0.1:6060", nil))
		}()
	}
	debug.SetMemoryLimit(c.MemLimit)
	return
}
