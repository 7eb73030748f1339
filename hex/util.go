package hex

import (
	"facio.dev/lol"
)

type B = []byte

var (
	log, chk, errorf = lol.Main.Log, lol.Main.Check, lol.Main.Errorf
)
