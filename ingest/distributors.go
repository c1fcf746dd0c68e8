package ingest

import (
	"fmt"
	"strings"

	"github.com/satheeshds/schemes/reference"
)

// DistributorFields lists the columns of a distributor upload.
var DistributorFields = []Field{
	{Name: "id", Label: "Distributor ID", Required: true,
		Variations: []string{"Distributor ID", "DistributorID", "Distributor Code", "Code", "ID"}},
	{Name: "name", Label: "Distributor Name", Required: true,
		Variations: []string{"Distributor Name", "Name", "Firm Name"}},
	{Name: "type", Label: "Distributor Type", Required: true,
		Variations: []string{"Distributor Type", "Type", "Type Code", "Channel"}},
	{Name: "zone", Label: "Zone", Required: true,
		Variations: []string{"Zone", "Region"}},
	{Name: "state", Label: "State", Required: true,
		Variations: []string{"State", "State Name"}},
}

// DistributorRecord is one mapped upload row. Errors is empty for a valid row.
type DistributorRecord struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	Zone   string   `json:"zone"`
	State  string   `json:"state"`
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

func (r DistributorRecord) Valid() bool { return len(r.Errors) == 0 }

// DistributorReport is the full accept/reject breakdown of one file.
type DistributorReport struct {
	Records      []DistributorRecord `json:"records"`
	Errors       []string            `json:"errors"`
	TotalCount   int                 `json:"total_count"`
	ValidCount   int                 `json:"valid_count"`
	InvalidCount int                 `json:"invalid_count"`
}

// ValidRecords returns the rows eligible for submission.
func (rep *DistributorReport) ValidRecords() []DistributorRecord {
	valid := make([]DistributorRecord, 0, rep.ValidCount)
	for _, r := range rep.Records {
		if r.Valid() {
			valid = append(valid, r)
		}
	}
	return valid
}

// ValidateDistributors maps and validates every row of t. Header problems
// abort with a *StructuralError; row problems are attached to the records.
func ValidateDistributors(t *Table, ref *reference.Data) (*DistributorReport, error) {
	m, err := MapHeaders(t.Headers, DistributorFields)
	if err != nil {
		return nil, err
	}

	rep := &DistributorReport{
		Records: make([]DistributorRecord, 0, len(t.Rows)),
		Errors:  []string{},
	}
	width := m.MaxIndex() + 1
	seen := make(map[string]int, len(t.Rows))

	for i, row := range t.Rows {
		rec := DistributorRecord{
			ID:     m.Cell(row, "id"),
			Name:   m.Cell(row, "name"),
			Type:   m.Cell(row, "type"),
			Zone:   m.Cell(row, "zone"),
			State:  m.Cell(row, "state"),
			Row:    i + RowOffset,
			Errors: []string{},
		}

		if len(row) < width {
			rec.Errors = append(rec.Errors, fmt.Sprintf("Insufficient columns (expected %d, found %d)", width, len(row)))
		} else {
			rec.Errors = CheckDistributor(&rec, ref)
			if rec.ID != "" {
				if first, dup := seen[rec.ID]; dup {
					rec.Errors = append(rec.Errors, fmt.Sprintf("Duplicate distributor ID %s (first seen on row %d)", rec.ID, first))
				} else {
					seen[rec.ID] = rec.Row
				}
			}
		}

		for _, msg := range rec.Errors {
			rep.Errors = append(rep.Errors, rowMessage(i, msg))
		}
		if rec.Valid() {
			rep.ValidCount++
		} else {
			rep.InvalidCount++
		}
		rep.Records = append(rep.Records, rec)
	}
	rep.TotalCount = len(rep.Records)
	return rep, nil
}

// CheckDistributor applies the presence, membership and zone/state rules to
// rec and returns its messages. Type, zone and state are rewritten to their
// canonical spelling when they match.
func CheckDistributor(rec *DistributorRecord, ref *reference.Data) []string {
	errs := []string{}
	for _, f := range DistributorFields {
		if f.Required && distributorValue(rec, f.Name) == "" {
			errs = append(errs, f.Label+" is required")
		}
	}

	if rec.Type != "" {
		if code, ok := ref.DistributorType(rec.Type); ok {
			rec.Type = code
		} else {
			errs = append(errs, fmt.Sprintf("Invalid distributor type %q. Valid types: %s",
				rec.Type, strings.Join(ref.TypeCodes(), ", ")))
		}
	}

	zoneOK := false
	if rec.Zone != "" {
		if zone, ok := ref.Zone(rec.Zone); ok {
			rec.Zone = zone
			zoneOK = true
		} else {
			errs = append(errs, fmt.Sprintf("Invalid zone %q. Valid zones: %s",
				rec.Zone, strings.Join(ref.Zones, ", ")))
		}
	}

	if zoneOK && rec.State != "" {
		if states := ref.StatesFor(rec.Zone); len(states) > 0 {
			if state, ok := ref.State(rec.Zone, rec.State); ok {
				rec.State = state
			} else {
				errs = append(errs, fmt.Sprintf("Invalid state %q for zone %s. Valid states: %s",
					rec.State, rec.Zone, strings.Join(states, ", ")))
			}
		}
	}
	return errs
}

func distributorValue(rec *DistributorRecord, field string) string {
	switch field {
	case "id":
		return rec.ID
	case "name":
		return rec.Name
	case "type":
		return rec.Type
	case "zone":
		return rec.Zone
	case "state":
		return rec.State
	}
	return ""
}
