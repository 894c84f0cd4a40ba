package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// legacyString reports whether data is a bare JSON string and returns it.
// Older backends sent several list elements as plain strings instead of
// objects; the callers below turn such strings into the object form.
func legacyString(data []byte) (string, bool, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", true, err
	}
	return s, true, nil
}

// UnmarshalJSON accepts either {"text","speaker"} or a plain string.
func (q *Quote) UnmarshalJSON(data []byte) error {
	s, ok, err := legacyString(data)
	if ok {
		*q = Quote{Text: s, Shape: ShapeLegacy}
		return err
	}
	type alias Quote
	var v alias
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("quote: %w", err)
	}
	*q = Quote(v)
	q.Shape = ShapeCurrent
	return nil
}

// UnmarshalJSON accepts either {"name","role"} or a plain name.
func (p *Person) UnmarshalJSON(data []byte) error {
	s, ok, err := legacyString(data)
	if ok {
		*p = Person{Name: s, Shape: ShapeLegacy}
		return err
	}
	type alias Person
	var v alias
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("person: %w", err)
	}
	*p = Person(v)
	p.Shape = ShapeCurrent
	return nil
}

// UnmarshalJSON accepts either an object or a plain premise sentence.
func (h *HiddenPremise) UnmarshalJSON(data []byte) error {
	s, ok, err := legacyString(data)
	if ok {
		*h = HiddenPremise{Premise: s, Shape: ShapeLegacy}
		return err
	}
	type alias HiddenPremise
	var v alias
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("hidden premise: %w", err)
	}
	*h = HiddenPremise(v)
	h.Shape = ShapeCurrent
	return nil
}

// UnmarshalJSON accepts either an object or a plain strategy sentence.
func (r *RealisticContradiction) UnmarshalJSON(data []byte) error {
	s, ok, err := legacyString(data)
	if ok {
		*r = RealisticContradiction{Strategy: s, Shape: ShapeLegacy}
		return err
	}
	type alias RealisticContradiction
	var v alias
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("realistic contradiction: %w", err)
	}
	*r = RealisticContradiction(v)
	r.Shape = ShapeCurrent
	return nil
}

// UnmarshalJSON accepts either an object or a plain hooking sentence.
func (h *HookingPoint) UnmarshalJSON(data []byte) error {
	s, ok, err := legacyString(data)
	if ok {
		*h = HookingPoint{Point: s, Shape: ShapeLegacy}
		return err
	}
	type alias HookingPoint
	var v alias
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("hooking point: %w", err)
	}
	*h = HookingPoint(v)
	h.Shape = ShapeCurrent
	return nil
}

// UnmarshalJSON accepts either an array of steps or the flat legacy object.
func (c *ContentDirection) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = ContentDirection{}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var steps []ContentDirectionStep
		if err := json.Unmarshal(trimmed, &steps); err != nil {
			return fmt.Errorf("content direction: %w", err)
		}
		*c = ContentDirection{Shape: ShapeCurrent, Steps: steps}
	case '{':
		var legacy LegacyContentDirection
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return fmt.Errorf("content direction: %w", err)
		}
		*c = ContentDirection{Shape: ShapeLegacy, Legacy: legacy}
	default:
		return fmt.Errorf("content direction: unexpected JSON %q", truncate(trimmed, 16))
	}
	return nil
}

// MarshalJSON writes the content direction back in the shape it arrived in,
// so cached results round-trip unchanged.
func (c ContentDirection) MarshalJSON() ([]byte, error) {
	if c.Shape == ShapeLegacy {
		return json.Marshal(c.Legacy)
	}
	if c.Steps == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Steps)
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
