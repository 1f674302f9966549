package ari

// idStrategy extracts a stable string identity and request-correlation
// parameters from a raw record. Strategies are pure functions of the record:
// no side effects, no network access.
type idStrategy interface {
	// params gives the parameter values for targeting this object in a
	// follow-up operation.
	params(rec Record) (Params, error)
	// id gives a single string identifying the object.
	id(rec Record) (string, error)
}

// fieldID is the strategy that works for most kinds: a configured parameter
// name plus a record field, "id" unless overridden.
type fieldID struct {
	param string
	field string
}

func (g fieldID) fieldName() string {
	if g.field == "" {
		return "id"
	}
	return g.field
}

func (g fieldID) params(rec Record) (Params, error) {
	id, err := g.id(rec)
	if err != nil {
		return nil, err
	}
	return Params{g.param: id}, nil
}

func (g fieldID) id(rec Record) (string, error) {
	return stringField(rec, g.fieldName())
}

// endpointID composes the technology/resource pair into a single identity,
// because endpoints have no single id field.
type endpointID struct{}

func (endpointID) params(rec Record) (Params, error) {
	tech, err := stringField(rec, "technology")
	if err != nil {
		return nil, err
	}
	resource, err := stringField(rec, "resource")
	if err != nil {
		return nil, err
	}
	return Params{"tech": tech, "resource": resource}, nil
}

func (endpointID) id(rec Record) (string, error) {
	p, err := endpointID{}.params(rec)
	if err != nil {
		return "", err
	}
	return p["tech"].(string) + "/" + p["resource"].(string), nil
}

// stringField reads a required string field from a record. A missing field
// is a lookup error, never silently defaulted.
func stringField(rec Record, name string) (string, error) {
	v, ok := rec[name]
	if !ok || v == nil {
		return "", newErrorf(ErrCodeMissingField, "record has no %q field", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", newErrorf(ErrCodeMissingField, "record field %q is not a string", name)
	}
	return s, nil
}
