package ari

import "net/http"

// promote converts a normalized transport result into the representation
// declared by the operation's response shape: a single *Object, a []*Object,
// the raw body for primitive or unmodeled shapes, or nil for empty
// responses.
//
// Promotion never fails. The receive loop is long-lived and shares this code
// with the request path, so a shape the client has no model for degrades to
// raw pass-through, and a payload that contradicts its declared shape is
// logged and dropped instead of raised.
func (c *Client) promote(res *Result, op *Operation) interface{} {
	if res == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	shape := op.responseShape(res.StatusCode)
	switch shape.Kind {
	case ShapeRef, ShapeList:
	default:
		// Primitive and undeclared shapes pass through unmodified.
		return res.Body
	}

	kind, ok := kindRegistry[shape.Name]
	if !ok {
		c.log.Infof("no model for %q; returning raw data", shape.Name)
		return res.Body
	}

	if shape.Kind == ShapeList {
		seq, ok := res.Body.([]interface{})
		if !ok {
			c.log.Errorf("expected a list of %s, got %T", shape.Name, res.Body)
			return nil
		}
		objs := make([]*Object, 0, len(seq))
		for _, el := range seq {
			if el == nil {
				continue
			}
			rec, ok := el.(map[string]interface{})
			if !ok {
				c.log.Errorf("expected a %s record in list, got %T", shape.Name, el)
				continue
			}
			obj, err := c.newObjectOf(kind, Record(rec))
			if err != nil {
				c.log.Errorf("cannot promote %s: %v", shape.Name, err)
				continue
			}
			objs = append(objs, obj)
		}
		return objs
	}

	if res.Body == nil {
		// An optional body on 200.
		return nil
	}
	rec, ok := res.Body.(map[string]interface{})
	if !ok {
		c.log.Errorf("expected a %s record, got %T", shape.Name, res.Body)
		return nil
	}
	obj, err := c.newObjectOf(kind, Record(rec))
	if err != nil {
		c.log.Errorf("cannot promote %s: %v", shape.Name, err)
		return nil
	}
	return obj
}
