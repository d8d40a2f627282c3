package spec

// DefaultOpenAPIVersion is the grammar version stamped on new documents.
const DefaultOpenAPIVersion = "3.0.3"

// NewDefaultDocument returns the built-in starting document, already in
// canonical form.
func NewDefaultDocument() *Document {
	doc := &Document{
		OpenAPI: DefaultOpenAPIVersion,
		Info: &Info{
			Title:       "New API",
			Description: "",
			Version:     "1.0.0",
		},
		Servers: []Server{{URL: "https://api.example.com", Description: "Production server"}},
		Paths:   map[string]*PathItem{},
	}
	return PreProcess(doc)
}
