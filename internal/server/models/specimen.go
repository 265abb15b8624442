package models

// Identifier is one external identifier scoped by naming system.
// System "" means unscoped.
type Identifier struct {
	System string `json:"system"`
	Value  string `json:"value"`
}

// Dataset is the top-level grouping a specimen belongs to.
type Dataset struct {
	URI                 string       `json:"uri"`
	ExternalIdentifiers []Identifier `json:"externalIdentifiers,omitempty"`
}

// Case groups the patients of one study case.
type Case struct {
	ID                  string       `json:"id"`
	ExternalIdentifiers []Identifier `json:"externalIdentifiers,omitempty"`
}

// Patient is the individual a specimen was sampled from.
type Patient struct {
	ID                  string       `json:"id"`
	ExternalIdentifiers []Identifier `json:"externalIdentifiers,omitempty"`
}

// Specimen is one biological sample together with its ancestor identifiers
// and the typed artifacts recorded against it.
type Specimen struct {
	ID                  string       `json:"id"`
	ExternalIdentifiers []Identifier `json:"externalIdentifiers,omitempty"`
	Case                Case         `json:"case"`
	Patient             Patient      `json:"patient"`
	Dataset             Dataset      `json:"dataset"`
	Artifacts           Artifacts    `json:"artifacts"`
}
