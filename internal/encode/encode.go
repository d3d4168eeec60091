// Package encode renders values from the engine's data model as JSON,
// YAML, raw text or aligned tables. Object key order is preserved in every
// format.
package encode

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"

	"github.com/jacoelho/vq/value"
)

// ErrNotTabular reports a value that cannot be rendered as a table.
var ErrNotTabular = errors.New("value is not an array of objects")

// JSON writes v to w followed by a newline. An empty indent produces
// compact single-line output.
func JSON(w io.Writer, v value.Value, indent string) error {
	var b strings.Builder
	appendJSON(&b, v, indent, 0)
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// Text returns the compact JSON encoding of v.
func Text(v value.Value) string {
	var b strings.Builder
	appendJSON(&b, v, "", 0)
	return b.String()
}

// Raw writes strings without quoting and every other value as compact
// JSON.
func Raw(w io.Writer, v value.Value) error {
	if s, ok := v.(value.String); ok {
		_, err := io.WriteString(w, string(s)+"\n")
		return err
	}
	return JSON(w, v, "")
}

func appendJSON(b *strings.Builder, v value.Value, indent string, depth int) {
	switch current := v.(type) {
	case value.Null:
		b.WriteString("null")
	case value.Bool:
		if current {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case value.Int, value.Float:
		b.WriteString(value.FormatNumber(current))
	case value.String:
		appendJSONString(b, string(current))
	case value.Array:
		if len(current) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteByte('[')
		for i, element := range current {
			if i > 0 {
				b.WriteByte(',')
			}
			newline(b, indent, depth+1)
			appendJSON(b, element, indent, depth+1)
		}
		newline(b, indent, depth)
		b.WriteByte(']')
	case *value.Object:
		if current.Len() == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteByte('{')
		first := true
		current.Each(func(key string, element value.Value) bool {
			if !first {
				b.WriteByte(',')
			}
			first = false
			newline(b, indent, depth+1)
			appendJSONString(b, key)
			b.WriteByte(':')
			if indent != "" {
				b.WriteByte(' ')
			}
			appendJSON(b, element, indent, depth+1)
			return true
		})
		newline(b, indent, depth)
		b.WriteByte('}')
	}
}

func newline(b *strings.Builder, indent string, depth int) {
	if indent == "" {
		return
	}
	b.WriteByte('\n')
	for i := 0; i < depth; i++ {
		b.WriteString(indent)
	}
}

func appendJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

// YAML writes v as a YAML document. Objects marshal through ordered
// mappings so key order survives.
func YAML(w io.Writer, v value.Value) error {
	payload, err := yaml.Marshal(toYAML(v))
	if err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	_, err = w.Write(payload)
	return err
}

func toYAML(v value.Value) any {
	switch current := v.(type) {
	case value.Array:
		out := make([]any, 0, len(current))
		for _, element := range current {
			out = append(out, toYAML(element))
		}
		return out
	case *value.Object:
		out := make(yaml.MapSlice, 0, current.Len())
		current.Each(func(key string, element value.Value) bool {
			out = append(out, yaml.MapItem{Key: key, Value: toYAML(element)})
			return true
		})
		return out
	default:
		return value.ToAny(v)
	}
}

// Table renders an array of objects as an aligned table. Columns follow
// the key order of the first row, extended by keys new rows introduce.
func Table(w io.Writer, v value.Value) error {
	rows, ok := v.(value.Array)
	if !ok {
		return fmt.Errorf("%w: got %s", ErrNotTabular, value.TypeName(v))
	}

	var columns []string
	seen := make(map[string]bool)
	objects := make([]*value.Object, 0, len(rows))
	for _, row := range rows {
		obj, ok := row.(*value.Object)
		if !ok {
			return fmt.Errorf("%w: row is %s", ErrNotTabular, value.TypeName(row))
		}
		objects = append(objects, obj)
		obj.Each(func(key string, _ value.Value) bool {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
			return true
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	for _, obj := range objects {
		cells := make([]string, len(columns))
		for i, column := range columns {
			if cell, ok := obj.Get(column); ok {
				cells[i] = cellText(cell)
			}
		}
		table.Append(cells)
	}
	table.Render()
	return nil
}

func cellText(v value.Value) string {
	switch current := v.(type) {
	case value.String:
		return string(current)
	case value.Int:
		return strconv.FormatInt(int64(current), 10)
	default:
		return Text(v)
	}
}
