package specfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"
)

// Ready-made targets for the common cases. Register them under whatever
// specifiers fit the application:
//
//	m.RegisterFunc(specfmt.JSON, "json")
//	m.RegisterType(Order{}, map[specfmt.Spec]any{"yaml": specfmt.YAML})

// Indented controls JSON and YAML indentation. Without it, JSON is compact
// and YAML uses its default indent.
type Indented interface {
	Indent() string
}

// JSON renders the object as JSON. Implement [Indented] for indented output.
func JSON(obj any, _ Spec) (string, error) {
	if ind, ok := obj.(Indented); ok {
		b, err := json.MarshalIndent(obj, "", ind.Indent())
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// YAML renders the object as YAML. Implement [Indented] to control the
// indent width.
func YAML(obj any, _ Spec) (out string, err error) {
	// yaml.v3 panics on values it cannot reach through reflection, e.g.
	// structs embedded via unexported fields.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("yaml: %v", r)
		}
	}()
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if ind, ok := obj.(Indented); ok {
		enc.SetIndent(len(ind.Indent()))
	}
	if err := enc.Encode(obj); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Quote renders the object's default text in double quotes.
func Quote(obj any, _ Spec) (string, error) {
	return strconv.Quote(stringify(obj)), nil
}

// Truncate returns a target that caps the rendered text at width display
// columns, truncating with "...". Width is measured in terminal cells, so
// wide characters count double.
func Truncate(width int) Target {
	return func(obj any, _ Spec) (string, error) {
		s := stringify(obj)
		if width > 0 && runewidth.StringWidth(s) > width {
			if width <= 3 {
				return runewidth.Truncate(s, width, ""), nil
			}
			return runewidth.Truncate(s, width, "..."), nil
		}
		return s, nil
	}
}

// Pad returns a target that right-pads the rendered text to width display
// columns.
func Pad(width int) Target {
	return func(obj any, _ Spec) (string, error) {
		return runewidth.FillRight(stringify(obj), width), nil
	}
}

func stringify(obj any) string {
	if s, ok := obj.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", obj)
}
