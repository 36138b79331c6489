package output

import "encoding/json"

// Formatter interface for formatting output
type Formatter interface {
	Format(data any) (string, error)
}

// JSONFormatter renders API responses as JSON, indented so listings stay
// readable in a terminal.
type JSONFormatter struct {
	compact bool
}

// NewJSONFormatter creates a new indented JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// NewCompactFormatter creates a formatter suited to piping into other tools
func NewCompactFormatter() *JSONFormatter {
	return &JSONFormatter{compact: true}
}

// Format formats data as JSON
func (f *JSONFormatter) Format(data any) (string, error) {
	var (
		bytes []byte
		err   error
	)
	if f.compact {
		bytes, err = json.Marshal(data)
	} else {
		bytes, err = json.MarshalIndent(data, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
