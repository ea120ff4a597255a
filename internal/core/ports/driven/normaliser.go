package driven

// Normaliser extracts the plain text of one markup format. The store
// chunks whatever text it is given, so normalising is the caller's
// choice; offsets then refer to the normalised text.
type Normaliser interface {
	// Kinds returns the document kinds this normaliser handles.
	Kinds() []string

	// Normalise converts the bytes of a file called name into text.
	Normalise(name string, data []byte) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Title is taken from the content (an H1, a <title>), or empty.
	Title string

	// Text is the extracted plain text.
	Text string

	// Format names the markup that was removed.
	Format string
}

// NormaliserRegistry selects the normaliser for a document kind.
type NormaliserRegistry interface {
	// Normalise runs the normaliser registered for kind.
	Normalise(kind, name string, data []byte) (*NormaliseResult, error)

	// Register adds a normaliser, replacing any earlier one for the same kinds.
	Register(normaliser Normaliser)

	// Kinds returns every kind that can be normalised.
	Kinds() []string
}
