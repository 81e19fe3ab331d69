package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"patch": true, "head": true, "options": true,
}

type parameter struct {
	Name     string `yaml:"name"`
	In       string `yaml:"in"`
	Required bool   `yaml:"required"`
}

type operation struct {
	Parameters []parameter          `yaml:"parameters"`
	Responses  map[string]yaml.Node `yaml:"responses"`
}

// apiDoc is the subset of a swagger 2.0 document the checker reads.
// Non-method keys of a path item are skipped.
type apiDoc struct {
	Paths map[string]map[string]operation
}

// parseDoc decodes a swagger document. JSON input is accepted as YAML.
func parseDoc(raw []byte) (apiDoc, error) {
	var top struct {
		Paths map[string]map[string]yaml.Node `yaml:"paths"`
	}
	if err := yaml.Unmarshal(raw, &top); err != nil {
		return apiDoc{}, err
	}
	if top.Paths == nil {
		return apiDoc{}, errors.New("missing top-level paths field")
	}

	doc := apiDoc{Paths: make(map[string]map[string]operation, len(top.Paths))}
	for path, item := range top.Paths {
		ops := make(map[string]operation)
		for key, node := range item {
			method := strings.ToLower(strings.TrimSpace(key))
			if !httpMethods[method] {
				continue
			}
			var op operation
			if err := node.Decode(&op); err != nil {
				return apiDoc{}, fmt.Errorf("%s %s: %w", strings.ToUpper(method), path, err)
			}
			ops[method] = op
		}
		if len(ops) > 0 {
			doc.Paths[path] = ops
		}
	}
	return doc, nil
}

// breakingChanges lists what revision drops or tightens relative to base:
// removed paths, operations and response codes, and newly required parameters.
func breakingChanges(base, revision apiDoc) []string {
	var issues []string
	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, "removed path: "+path)
			continue
		}
		for method, baseOp := range baseOps {
			label := strings.ToUpper(method) + " " + path
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, "removed operation: "+label)
				continue
			}
			for code := range baseOp.Responses {
				if _, ok := revOp.Responses[code]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s -> %s", label, code))
				}
			}

			known := make(map[string]bool, len(baseOp.Parameters))
			for _, p := range baseOp.Parameters {
				if p.Required {
					known[p.In+":"+p.Name] = true
				}
			}
			for _, p := range revOp.Parameters {
				if p.Required && !known[p.In+":"+p.Name] {
					issues = append(issues, fmt.Sprintf("new required %s parameter: %s -> %s", p.In, label, p.Name))
				}
			}
		}
	}
	sort.Strings(issues)
	return issues
}
