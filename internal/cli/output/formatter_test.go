package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format Format
		wide   bool
	}{
		{FormatJSON, false},
		{FormatYAML, false},
		{FormatTable, false},
		{FormatTable, true},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f := NewFormatter(tt.format, tt.wide)
			switch tt.format {
			case FormatJSON:
				if _, ok := f.(*JSONFormatter); !ok {
					t.Errorf("got %T, want *JSONFormatter", f)
				}
			case FormatYAML:
				if _, ok := f.(*YAMLFormatter); !ok {
					t.Errorf("got %T, want *YAMLFormatter", f)
				}
			default:
				tf, ok := f.(*TableFormatter)
				if !ok {
					t.Fatalf("got %T, want *TableFormatter", f)
				}
				if tf.Wide != tt.wide {
					t.Errorf("Wide = %v, want %v", tf.Wide, tt.wide)
				}
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

type sample struct {
	Name   string   `json:"name"`
	Level  int      `json:"level"`
	Tags   []string `json:"tags,omitempty"`
	Secret string   `json:"-"`
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, sample{Name: "Rex", Level: 2, Secret: "s"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "{\n  \"name\": \"Rex\",\n  \"level\": 2\n}\n"
	if buf.String() != want {
		t.Errorf("Format() = %q, want %q", buf.String(), want)
	}
}

func TestYAMLFormatter_Format(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{
			name: "struct keeps json names and order",
			data: sample{Name: "Rex", Level: 2, Tags: []string{"good", "boy"}, Secret: "s"},
			want: "name: Rex\nlevel: 2\ntags:\n  - good\n  - boy\n",
		},
		{
			name: "strings that look like other types stay quoted",
			data: map[string]string{"a": "true", "b": "42"},
			want: "a: \"true\"\nb: \"42\"\n",
		},
		{
			name: "slice of structs",
			data: []sample{{Name: "A", Level: 1}, {Name: "B", Level: 3}},
			want: "- name: A\n  level: 1\n- name: B\n  level: 3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&YAMLFormatter{}).Format(&buf, tt.data); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Format() =\n%s\nwant\n%s", buf.String(), tt.want)
			}
		})
	}
}

func TestYAMLFormatter_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	err := (&YAMLFormatter{}).Format(&buf, map[string]any{"ch": make(chan int)})
	if err == nil || !strings.Contains(err.Error(), "yaml output") {
		t.Errorf("error = %v, want yaml output error", err)
	}
}
