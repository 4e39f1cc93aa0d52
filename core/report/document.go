package report

// Document is a renderer-agnostic description of a printable page: a title and an ordered list of sections.
// Every value is already formatted.
type Document struct {
	Title    string
	Subtitle string
	Sections []Section
}

type Section struct {
	Heading    string
	Images     []Image
	Lines      []string
	Fields     []Field
	Table      *Table
	Checkboxes []Checkbox
}

type Field struct {
	Label string
	Value string
}

type Table struct {
	Columns []string
	Rows    [][]string
	Footer  [][]string
}

type Checkbox struct {
	Label   string
	Checked bool
}

// Image is an opaque inline blob.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Section returns the first section with the given heading.
func (d Document) Section(heading string) (Section, bool) {
	for _, s := range d.Sections {
		if s.Heading == heading {
			return s, true
		}
	}
	return Section{}, false
}

// Field returns the value of the first field with the given label.
func (s Section) Field(label string) (string, bool) {
	for _, f := range s.Fields {
		if f.Label == label {
			return f.Value, true
		}
	}
	return "", false
}
