package util

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const noValue = "<no value>"

var (
	templateFuncs = template.FuncMap{
		"default": func(defaultVal any, val any) any {
			if val == nil || val == "" {
				return defaultVal
			}
			return val
		},
		"upper": func(s string) string { return cases.Upper(language.Vietnamese).String(s) },
		"lower": func(s string) string { return cases.Lower(language.Vietnamese).String(s) },
		"join": func(sep string, items []any) string {
			strs := make([]string, len(items))
			for i, item := range items {
				strs[i] = fmt.Sprintf("%v", item)
			}
			return strings.Join(strs, sep)
		},
	}

	// Instructions are rendered on every model call; parsed templates are
	// kept per source text.
	templateCache sync.Map
)

// RenderTemplate executes text as a text/template over data. Text without
// template markers is returned unchanged and keys missing from data render
// as empty strings. Prompts are plain text, so no HTML escaping is applied.
func RenderTemplate(text string, data map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := parseTemplate(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return strings.ReplaceAll(buf.String(), noValue, ""), nil
}

func parseTemplate(text string) (*template.Template, error) {
	if cached, ok := templateCache.Load(text); ok {
		return cached.(*template.Template), nil
	}

	tmpl, err := template.New("prompt").Option("missingkey=zero").Funcs(templateFuncs).Parse(text)
	if err != nil {
		return nil, err
	}

	actual, _ := templateCache.LoadOrStore(text, tmpl)

	return actual.(*template.Template), nil
}
