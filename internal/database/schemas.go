package database

import (
	_ "embed"
)

//go:embed schemas/client_data_schema.sql
var clientDataSchema string

// schemas maps database names to the schema applied by Migrate.
var schemas = map[string]string{
	"client_data": clientDataSchema,
}
