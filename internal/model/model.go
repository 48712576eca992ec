// Package model contains the declaratively mapped database schema.
// Tables are described by struct tags; DDL is derived from them at startup.
package model

import "github.com/uptrace/bun"

// Example is the single table declared by this skeleton. No request
// handler reads or writes it; it exists as a worked mapping for anything
// built on top of this service.
type Example struct {
	bun.BaseModel `bun:"table:examples"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name"`
}

// Models lists every mapped struct the startup migration ensures, in
// creation order.
func Models() []any {
	return []any{
		(*Example)(nil),
	}
}
