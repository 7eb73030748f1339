// Command factdb is a thin CLI front end over the database façade: enough
// to transact facts and pull entities back out from a shell, in the same
// spirit as a small client talking to a running server over HTTP.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alexflint/go-arg"

	"facio.dev/attr"
	"facio.dev/codec"
	"facio.dev/config"
	"facio.dev/db"
	"facio.dev/eid"
	"facio.dev/fact"
	"facio.dev/log"
	"facio.dev/node"
	"facio.dev/schema"
	"facio.dev/store/badgerstore"
	"facio.dev/timestamp"
)

var args struct {
	Transact []string `arg:"positional" help:"attr=value pairs to assert on a fresh entity"`
	Pull     string   `arg:"--pull" help:"attr=value to look up a unique entity by, printing its value of that attribute only"`
	Declare  string   `arg:"--declare" help:"attr:kind declaration, e.g. Person.name:s, appended to the running schema"`
}

func main() {
	cfg := config.New()
	arg.MustParse(&args)

	s, err := badgerstore.Open(badgerstore.Config{Dir: cfg.DataDir})
	if err != nil {
		log.F.F("open store: %s", err)
		os.Exit(1)
	}
	defer func() { _ = s.Close() }()

	sch := bootstrapSchema()

	d, err := db.Open(s, sch, node.Source{IID: cfg.InstID})
	if err != nil {
		log.F.F("open db: %s", err)
		os.Exit(1)
	}

	switch {
	case args.Declare != "":
		runDeclare(sch, args.Declare)
	case args.Pull != "":
		runPull(d, args.Pull)
	case len(args.Transact) > 0:
		runTransact(d, sch, cfg.InstID, args.Transact)
	default:
		fmt.Println("nothing to do: pass attr=value pairs, --pull, or --declare")
	}
}

// bootstrapSchema starts a fresh in-memory attribute registry for this run.
// schema.AsFacts/FromFacts round-trips a registry through the database
// itself; wiring that replay into startup is left as future work.
func bootstrapSchema() *schema.T {
	return schema.New()
}

func runDeclare(sch *schema.T, spec string) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		log.F.F("malformed --declare %q, want attr:kind", spec)
		os.Exit(1)
	}
	kind := codec.Tag(parts[1][0])
	a := attr.T{Name: attr.Name(parts[0]), Kind: kind}
	if err := sch.Declare(a); err != nil {
		log.F.F("declare: %s", err)
		os.Exit(1)
	}
	fmt.Printf("declared %s\n", a.Name)
}

func runTransact(d *db.T, sch *schema.T, iid uint32, pairs []string) {
	alloc := eid.NewAllocator(iid, 0)
	e, _ := alloc.Next()
	var facts fact.Slice
	for _, p := range pairs {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			log.F.F("malformed pair %q, want attr=value", p)
			os.Exit(1)
		}
		facts = append(facts, fact.T{Eid: e, Attr: attr.Name(kv[0]), Value: kv[1]})
	}
	newDb, err := d.Transact(facts, timestamp.Now().I64())
	if err != nil {
		log.F.F("transact: %s", err)
		os.Exit(1)
	}
	fmt.Printf("committed %v as entity %s, head now %s\n", facts, e, newDb.Head())
}

func runPull(d *db.T, pair string) {
	kv := strings.SplitN(pair, "=", 2)
	if len(kv) != 2 {
		log.F.F("malformed --pull %q, want attr=value", pair)
		os.Exit(1)
	}
	e, ok := d.Entity(attr.Name(kv[0]), kv[1])
	if !ok {
		fmt.Println("no matching entity")
		return
	}
	fmt.Printf("entity %s:\n", e)
	for _, a := range []attr.Name{attr.Name(kv[0])} {
		for _, v := range d.Index().ValuesOf(e, a) {
			fmt.Printf("  %s = %v\n", a, v)
		}
	}
}
