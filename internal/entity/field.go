package entity

// FieldDefinition is one entry of the field vocabulary.
type FieldDefinition struct {
	Field    string   `json:"field"`
	Synonyms []string `json:"synonyms"`
}

// Assignment is one committed field to value-token pairing.
type Assignment struct {
	Field    string  `json:"field"`
	KeyToken string  `json:"key_token"`
	ValueKey string  `json:"value_token"`
	Weight   float64 `json:"weight"`
	Value    string  `json:"value"`
}

// Overrides are caller supplied cells applied to the row before resolution.
// Values is keyed by column name; Ranges by field then range suffix (e.g. "RangeLow").
type Overrides struct {
	Values map[string]string             `json:"values,omitempty"`
	Ranges map[string]map[string]float64 `json:"ranges,omitempty"`
}
