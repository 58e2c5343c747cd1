package models

// Document is one exported row: column name to column value.
type Document map[string]any
