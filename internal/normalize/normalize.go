// Package normalize flattens the join shapes the store hands back into one
// canonical repair record. The query-building client returns the joined
// machine in three shapes depending on the query path: a nested struct
// (preloaded association), a slice holding at most one element (batched
// relation fetch), or pre-flattened alias columns (the procedural filter
// function). One adapter per shape feeds the shared MachineInfo type; all
// adapters are pure and default missing data to "" / false rather than
// omitting fields.
package normalize

import "repairshop-backend/internal/model"

// MachineInfo is the canonical slice of machine data carried on a flattened
// repair record.
type MachineInfo struct {
	NS    string
	Brand string
	Class string
}

// RepairRecord is the flat, client-facing shape of a repair order joined
// with its machine and client.
type RepairRecord struct {
	ID             int64  `json:"id"`
	ClientID       string `json:"client_id"`
	ClientName     string `json:"client_name"`
	NS             string `json:"ns"`
	Brand          string `json:"brand"`
	Class          string `json:"class"`
	IntakeDate     string `json:"intake_date"`
	CompletedDate  string `json:"completed_date"`
	Status         string `json:"status"`
	FaultDesc      string `json:"fault_desc"`
	RepairDesc     string `json:"repair_desc"`
	IntermediaryID string `json:"intermediary_id"`
	Billed         bool   `json:"billed"`
}

// FlatRow mirrors the alias columns returned by the list_repairs_filtered
// SQL function.
type FlatRow struct {
	ID             int64
	ClientID       string
	ClientName     string
	NS             string
	MachineBrand   string
	MachineClass   string
	IntakeDate     string
	CompletedDate  string
	Status         string
	FaultDesc      string
	RepairDesc     string
	IntermediaryID string
	Billed         bool
}

// MachineFromStruct adapts a preloaded machine association. A zero-value
// struct (association not found) yields empty fields.
func MachineFromStruct(m model.Machine) MachineInfo {
	return MachineInfo{NS: m.NS, Brand: m.Brand, Class: m.Class}
}

// MachineFromList adapts the single-element-slice shape. Only the first
// element is meaningful; an empty slice yields empty fields.
func MachineFromList(ms []model.Machine) MachineInfo {
	if len(ms) == 0 {
		return MachineInfo{}
	}
	return MachineFromStruct(ms[0])
}

// MachineFromAliases adapts pre-flattened alias columns.
func MachineFromAliases(ns, brand, class string) MachineInfo {
	return MachineInfo{NS: ns, Brand: brand, Class: class}
}

// Record builds the flat record from a repair row, the adapted machine info
// and the owning client's display name. The record's NS is the repair's own
// machine reference so that a dangling reference still round-trips.
func Record(r model.Repair, mi MachineInfo, clientName string) RepairRecord {
	rec := RepairRecord{
		ID:             r.ID,
		ClientID:       r.ClientRef,
		ClientName:     clientName,
		NS:             r.MachineNS,
		Brand:          mi.Brand,
		Class:          mi.Class,
		IntakeDate:     r.IntakeDate,
		CompletedDate:  r.CompletedDate,
		Status:         r.Status,
		FaultDesc:      r.FaultDesc,
		RepairDesc:     r.RepairDesc,
		IntermediaryID: r.IntermediaryID,
		Billed:         r.Billed,
	}
	if rec.NS == "" {
		rec.NS = mi.NS
	}
	return rec
}

// FromFlatRow builds the flat record from a procedural-query row.
func FromFlatRow(row FlatRow) RepairRecord {
	mi := MachineFromAliases(row.NS, row.MachineBrand, row.MachineClass)
	return Record(model.Repair{
		ID:             row.ID,
		ClientRef:      row.ClientID,
		MachineNS:      row.NS,
		IntakeDate:     row.IntakeDate,
		CompletedDate:  row.CompletedDate,
		Status:         row.Status,
		FaultDesc:      row.FaultDesc,
		RepairDesc:     row.RepairDesc,
		IntermediaryID: row.IntermediaryID,
		Billed:         row.Billed,
	}, mi, row.ClientName)
}
