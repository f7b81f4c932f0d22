package database

import (
	"errors"
	"testing"
)

func TestSafeTableName(t *testing.T) {
	for table := range AllowedTables {
		got, err := SafeTableName(table)
		if err != nil {
			t.Errorf("SafeTableName(%q) failed: %v", table, err)
		}
		if got != table {
			t.Errorf("SafeTableName(%q) = %q", table, got)
		}
	}

	invalid := []string{
		"",
		"unknown_table",
		"proteins; DROP TABLE proteins",
		"pp_links--",
	}
	for _, table := range invalid {
		if _, err := SafeTableName(table); !errors.Is(err, ErrInvalidTableName) {
			t.Errorf("SafeTableName(%q) expected ErrInvalidTableName, got %v", table, err)
		}
	}
}
