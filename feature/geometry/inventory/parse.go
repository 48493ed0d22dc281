package inventory

import (
	"encoding/json"
	"fmt"
	"os"
)

// Document is the serialized form of an inventory, used both by the
// description reader and by snapshots.
type Document struct {
	Sensors   []Sensor   `json:"sensors,omitempty"`
	Recorders []Recorder `json:"recorders,omitempty"`
	Networks  []Network  `json:"networks,omitempty"`
	Stations  []Station  `json:"stations,omitempty"`
	Arrays    []Array    `json:"arrays,omitempty"`
}

// Warning is a non-fatal finding raised while reading a description.
// Warnings are surfaced to the operator; reading continues.
type Warning struct {
	Kind    Kind
	Key     string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %q: %s", w.Kind, w.Key, w.Message)
}

// ParseError is a fatal description error. No store interaction happens
// after a ParseError.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse description %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to parse description: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseFile reads a JSON geometry description into a transient inventory.
// Duplicate natural keys within the file are reported as warnings; the
// first occurrence wins. An entity without its natural key is fatal.
func ParseFile(path string) (*Inventory, []Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &ParseError{Path: path, Err: err}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, &ParseError{Path: path, Err: err}
	}

	inv, warnings, err := FromDocument(doc)
	if err != nil {
		return nil, warnings, &ParseError{Path: path, Err: err}
	}
	return inv, warnings, nil
}

// FromDocument builds an inventory from its serialized form, applying the
// same duplicate and missing-key rules as ParseFile.
func FromDocument(doc Document) (*Inventory, []Warning, error) {
	inv := New()
	var warnings []Warning

	for _, s := range doc.Sensors {
		if s.Serial == "" {
			return nil, warnings, fmt.Errorf("sensor without serial number")
		}
		if err := inv.AddSensor(s); err != nil {
			warnings = append(warnings, dupWarning(err))
		}
	}
	for _, r := range doc.Recorders {
		if r.Serial == "" {
			return nil, warnings, fmt.Errorf("recorder without serial number")
		}
		if err := inv.AddRecorder(r); err != nil {
			warnings = append(warnings, dupWarning(err))
		}
	}
	for _, n := range doc.Networks {
		if n.Code == "" {
			return nil, warnings, fmt.Errorf("network without code")
		}
		if err := inv.AddNetwork(n); err != nil {
			warnings = append(warnings, dupWarning(err))
		}
	}
	for _, s := range doc.Stations {
		if s.Name == "" || s.Network == "" {
			return nil, warnings, fmt.Errorf("station without network code or name")
		}
		if err := inv.AddStation(s); err != nil {
			warnings = append(warnings, dupWarning(err))
		}
	}
	for _, a := range doc.Arrays {
		if a.Name == "" {
			return nil, warnings, fmt.Errorf("array without name")
		}
		for _, key := range a.Stations {
			if key.Network == "" || key.Name == "" {
				return nil, warnings, fmt.Errorf("array %q references a station without network code or name", a.Name)
			}
		}
		if err := inv.AddArray(a); err != nil {
			warnings = append(warnings, dupWarning(err))
		}
	}

	return inv, warnings, nil
}

// Document returns the serialized form of the inventory.
func (inv *Inventory) Document() Document {
	return Document{
		Sensors:   inv.sensors,
		Recorders: inv.recorders,
		Networks:  inv.networks,
		Stations:  inv.stations,
		Arrays:    inv.arrays,
	}
}

func dupWarning(err error) Warning {
	dup, ok := err.(*DuplicateKeyError)
	if !ok {
		return Warning{Message: err.Error()}
	}
	return Warning{
		Kind:    dup.Kind,
		Key:     dup.Key,
		Message: "duplicate entry in description, first occurrence kept",
	}
}
