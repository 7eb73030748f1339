// Package facio is an embeddable, append-only fact database: a content-addressed
// DAG of transaction nodes, each carrying a set of entity-attribute-value facts,
// folded into a materialized EAV/AVE/VAE index and exposed through a typed
// object-mapping layer.
//
// See the db package for the top level Open/Transact/Pull/Entity API.
package facio

// Version is the module version string, reported by cmd/factdb's "version"
// subcommand.
const Version = "0.1.0"
