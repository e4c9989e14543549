/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Assignment is one killer's secret target and mission.
type Assignment struct {
	Killer  string `json:"killer,omitempty"`
	Target  string `json:"target"`
	Mission string `json:"mission"`
}

type assignmentsShape int

const (
	shapeKeyed assignmentsShape = iota
	shapeList
	shapeUnknown
)

func (s assignmentsShape) String() string {
	switch s {
	case shapeKeyed:
		return "keyed"
	case shapeList:
		return "list"
	default:
		return "unknown"
	}
}

type keyedAssignment struct {
	killer     string
	assignment Assignment
}

// Assignments is the assignment table in whichever of its two stored forms
// the document used: an object keyed by killer name, or the older list of
// records carrying their own killer field. Keyed entries keep document order.
type Assignments struct {
	shape assignmentsShape
	keyed []keyedAssignment
	list  []Assignment
}

func newKeyedAssignments() Assignments {
	return Assignments{shape: shapeKeyed}
}

func (a *Assignments) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0:
		*a = newKeyedAssignments()

		return nil
	case data[0] == '{':
		keyed, err := decodeKeyedAssignments(data)
		if err != nil {
			return err
		}
		*a = Assignments{shape: shapeKeyed, keyed: keyed}

		return nil
	case data[0] == '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}

		list := make([]Assignment, 0, len(raw))
		for _, r := range raw {
			var record Assignment
			if json.Unmarshal(r, &record) != nil {
				continue
			}
			list = append(list, record)
		}
		*a = Assignments{shape: shapeList, list: list}

		return nil
	default:
		if !json.Valid(data) {
			return errors.New("assignments: malformed json document")
		}
		*a = Assignments{shape: shapeUnknown}

		return nil
	}
}

// decodeKeyedAssignments walks the object token by token so that keys come
// back in the order they were written.
func decodeKeyedAssignments(data []byte) ([]keyedAssignment, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var keyed []keyedAssignment
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		killer, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("assignments: unexpected key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}

		var record Assignment
		_ = json.Unmarshal(raw, &record)

		keyed = append(keyed, keyedAssignment{killer: killer, assignment: record})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return keyed, nil
}

// Len returns the number of killers in the table.
func (a *Assignments) Len() int {
	switch a.shape {
	case shapeKeyed:
		return len(a.keyed)
	case shapeList:
		return len(a.list)
	default:
		return 0
	}
}

// resolveKiller maps free text typed by a player to the killer name the
// table uses. The first entry whose normalized name matches wins.
func (a *Assignments) resolveKiller(name string) (string, Assignment, error) {
	want := normalize(name)

	switch a.shape {
	case shapeKeyed:
		for _, k := range a.keyed {
			if normalize(k.killer) == want {
				return k.killer, k.assignment, nil
			}
		}
	case shapeList:
		for _, record := range a.list {
			if record.Killer == "" {
				continue
			}
			if normalize(record.Killer) == want {
				return record.Killer, record, nil
			}
		}
	default:
		return "", Assignment{}, fmt.Errorf("%w: %s table", ErrInvalidAssignmentsFormat, a.shape)
	}

	return "", Assignment{}, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
}
