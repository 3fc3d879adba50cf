package types

// JSONMap holds free-form JSON payloads such as gateway payment details.
type JSONMap map[string]any
