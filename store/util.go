package store

import (
	"facio.dev/context"
	"facio.dev/lol"
)

type (
	by  = []byte
	st  = string
	er  = error
	no  = int
	bo  = bool
	cx  = context.T
)

var (
	log, chk, errorf = lol.Main.Log, lol.Main.Check, lol.Main.Errorf
)
