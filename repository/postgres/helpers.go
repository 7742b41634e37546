package postgres

// Value kinds stored alongside each preference so a key read with the wrong
// getter reads as missing instead of as garbage.
const (
	kindString = "string"
	kindList   = "list"
	kindBool   = "bool"
)
