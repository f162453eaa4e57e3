package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templates = template.Must(
	template.New("").
		Option("missingkey=error").
		Funcs(template.FuncMap{
			"yamlString": yamlString,
			"identifier": identifier,
		}).
		ParseFS(templatesFS, "templates/*.tmpl"),
)

// render executes the named template with params.
func render(name string, params any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, params); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// yamlString returns s as a double-quoted YAML scalar. Dollar signs are doubled
// so compose interpolation reproduces the literal value.
func yamlString(s string) string {
	// JSON strings are valid YAML double-quoted scalars
	b, _ := json.Marshal(strings.ReplaceAll(s, "$", "$$"))
	return string(b)
}

var nonIdentifier = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// identifier turns s into a name usable for nginx upstreams.
func identifier(s string) string {
	return strings.ToLower(nonIdentifier.ReplaceAllString(s, "_"))
}

// field is a named parameter value for validation.
type field struct {
	name  string
	value string
}

// checkFields requires every value to be present and on a single line.
func checkFields(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
			continue
		}
		if strings.ContainsAny(f.value, "\r\n") {
			return fmt.Errorf("%s must not contain line breaks", f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required values: %s", strings.Join(missing, ", "))
	}
	return nil
}

func checkPort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", name, port)
	}
	return nil
}
