package ari

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/arilabs/ari-go/ari/internal/ariutil"
)

// swaggerProvider is the default APIProvider. It loads ARI's Swagger 1.1
// description: api-docs/resources.json plus one document per resource
// collection.
type swaggerProvider struct{}

type swaggerIndex struct {
	APIVersion string       `json:"apiVersion"`
	APIs       []swaggerRef `json:"apis"`
}

type swaggerRef struct {
	Path string `json:"path"`
}

type swaggerDoc struct {
	APIs   []swaggerAPI            `json:"apis"`
	Models map[string]swaggerModel `json:"models"`
}

type swaggerAPI struct {
	Path       string      `json:"path"`
	Operations []swaggerOp `json:"operations"`
}

type swaggerOp struct {
	Method        string         `json:"httpMethod"`
	Nickname      string         `json:"nickname"`
	ResponseClass string         `json:"responseClass"`
	Parameters    []swaggerParam `json:"parameters"`
}

type swaggerParam struct {
	Name      string `json:"name"`
	ParamType string `json:"paramType"`
	DataType  string `json:"dataType"`
	Required  bool   `json:"required"`
}

type swaggerModel struct {
	ID         string                     `json:"id"`
	Properties map[string]swaggerProperty `json:"properties"`
}

type swaggerProperty struct {
	Type string `json:"type"`
	Ref  string `json:"$ref"`
}

func (swaggerProvider) Load(ctx context.Context, opts *ClientOptions) (*API, error) {
	base := strings.TrimSuffix(opts.URL, "/")

	var index swaggerIndex
	if err := fetchJSON(ctx, opts, base+"/api-docs/resources.json", &index); err != nil {
		return nil, err
	}

	api := &API{
		Version:   index.APIVersion,
		Resources: make(map[string]*Resource, len(index.APIs)),
		Models:    make(map[string]*Model),
	}
	for _, ref := range index.APIs {
		name := resourceName(ref.Path)
		var doc swaggerDoc
		if err := fetchJSON(ctx, opts, base+"/api-docs/"+name+".json", &doc); err != nil {
			return nil, err
		}
		res := &Resource{Name: name, Operations: make(map[string]*Operation)}
		for _, a := range doc.APIs {
			for _, op := range a.Operations {
				res.Operations[op.Nickname] = &Operation{
					Nickname:  op.Nickname,
					Method:    op.Method,
					Path:      a.Path,
					Params:    convertParams(op.Parameters),
					Responses: map[string]Shape{"200": ParseShape(op.ResponseClass)},
				}
			}
		}
		api.Resources[name] = res
		for id, m := range doc.Models {
			api.Models[id] = convertModel(id, m)
		}
	}
	return api, nil
}

func convertParams(params []swaggerParam) []Param {
	out := make([]Param, 0, len(params))
	for _, p := range params {
		out = append(out, Param{
			Name:     p.Name,
			Location: p.ParamType,
			DataType: p.DataType,
			Required: p.Required,
		})
	}
	return out
}

func convertModel(id string, m swaggerModel) *Model {
	model := &Model{ID: m.ID, Properties: make(map[string]Property, len(m.Properties))}
	if model.ID == "" {
		model.ID = id
	}
	for name, p := range m.Properties {
		model.Properties[name] = Property{Type: p.Type, Ref: p.Ref}
	}
	return model
}

// resourceName maps an api-docs reference path such as
// "/api-docs/channels.{format}" to the repository name "channels".
func resourceName(p string) string {
	name := path.Base(p)
	if i := strings.IndexRune(name, '.'); i != -1 {
		name = name[:i]
	}
	return name
}

func fetchJSON(ctx context.Context, opts *ClientOptions, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return newError(ErrCodeInternal, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", agentIdentifier())
	if opts.Username != "" {
		req.SetBasicAuth(opts.Username, opts.Password)
	}
	resp, err := opts.httpClient().Do(req)
	if err != nil {
		return newError(ErrCodeInternal, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return httpError(resp)
	}
	if err := ariutil.Decode(resp.Body, v); err != nil {
		return newErrorf(ErrCodeInternal, "parsing %s: %v", url, err)
	}
	return nil
}
