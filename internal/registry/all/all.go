// Package all wires every built-in registry backend into the factory.
//
// Importing it (normally as a blank import from the wiring layer) runs the
// init functions of each backend package, making the kinds "postgres",
// "mssql", "mysql", and "sqlite" available through registry.Open. Binaries
// that only need a subset can import the individual backend packages
// instead.
package all

import (
	_ "chemsearch/internal/registry/mssql"
	_ "chemsearch/internal/registry/mysql"
	_ "chemsearch/internal/registry/postgres"
	_ "chemsearch/internal/registry/sqlite"
)
