// Package migrations embeds the SQL schema files so the migrate command
// can apply them without a filesystem checkout.
package migrations

import (
	"embed"
	"sort"
)

//go:embed *.sql
var files embed.FS

// All returns the migration file names in lexical (and therefore
// version) order.
func All() ([]string, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	return names, nil
}

// Read returns the contents of a single migration file.
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}
