// Package boardio moves board documents in and out of the store.
//
// Documents are encoded as JSON, YAML or TOML. Decode fills missing item ids
// with UUIDs and validates the result. SeedDir imports a directory of board
// files at start-up without touching boards that already exist; Import
// replaces the content of an existing board in one versioned update.
package boardio
