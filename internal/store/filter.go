package store

import (
	"context"
	"fmt"
	"strings"

	"repairshop-backend/internal/model"
	"repairshop-backend/internal/normalize"
)

// RepairFilter carries the optional listing filters. Empty values emit no
// predicate; an absent parameter never matches against the empty string.
// Identifiers (ClientID, NS, Status) match exactly; free-text fields
// (Brand, Class, FaultDesc) match as case-insensitive substrings, with
// brand and class applied to the joined machine relation.
type RepairFilter struct {
	ClientID  string
	NS        string
	Status    string
	Brand     string
	Class     string
	FaultDesc string
}

func substring(v string) string {
	return "%" + strings.ToLower(v) + "%"
}

// ListRepairs filters repairs through a composed join query, newest first.
// Machines and clients are fetched in one batched query each and matched
// back per row, so the per-row relation data arrives as a slice holding at
// most one element.
func (s *gormStore) ListRepairs(ctx context.Context, f RepairFilter) ([]normalize.RepairRecord, error) {
	q := s.db.WithContext(ctx).
		Model(&model.Repair{}).
		Select("repairs.*").
		Joins("LEFT JOIN machines ON machines.ns = repairs.machine_ns")

	if f.ClientID != "" {
		q = q.Where("repairs.client_id = ?", f.ClientID)
	}
	if f.NS != "" {
		q = q.Where("repairs.machine_ns = ?", f.NS)
	}
	if f.Status != "" {
		q = q.Where("repairs.status = ?", f.Status)
	}
	if f.Brand != "" {
		q = q.Where("LOWER(machines.brand) LIKE ?", substring(f.Brand))
	}
	if f.Class != "" {
		q = q.Where("LOWER(machines.class) LIKE ?", substring(f.Class))
	}
	if f.FaultDesc != "" {
		q = q.Where("LOWER(repairs.fault_desc) LIKE ?", substring(f.FaultDesc))
	}

	var repairs []model.Repair
	if err := q.Order("repairs.id DESC").Find(&repairs).Error; err != nil {
		return nil, fmt.Errorf("failed to list repairs: %w", err)
	}

	records := make([]normalize.RepairRecord, 0, len(repairs))
	if len(repairs) == 0 {
		return records, nil
	}

	machineLists, err := s.fetchMachineLists(ctx, repairs)
	if err != nil {
		return nil, err
	}
	clientNames, err := s.fetchClientNames(ctx, repairs)
	if err != nil {
		return nil, err
	}

	for _, r := range repairs {
		mi := normalize.MachineFromList(machineLists[r.MachineNS])
		records = append(records, normalize.Record(r, mi, clientNames[r.ClientRef]))
	}
	return records, nil
}

// ListRepairsProc produces the same logical result set as ListRepairs by
// invoking the list_repairs_filtered SQL function. Rows come back with
// pre-flattened alias columns.
func (s *gormStore) ListRepairsProc(ctx context.Context, f RepairFilter) ([]normalize.RepairRecord, error) {
	var rows []normalize.FlatRow
	err := s.db.WithContext(ctx).
		Raw("SELECT * FROM list_repairs_filtered(?, ?, ?, ?, ?, ?)",
			f.ClientID, f.NS, f.Brand, f.Class, f.Status, f.FaultDesc).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list repairs via filter function: %w", err)
	}

	records := make([]normalize.RepairRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, normalize.FromFlatRow(row))
	}
	return records, nil
}

func (s *gormStore) fetchMachineLists(ctx context.Context, repairs []model.Repair) (map[string][]model.Machine, error) {
	seen := make(map[string]struct{}, len(repairs))
	nsList := make([]string, 0, len(repairs))
	for _, r := range repairs {
		if _, ok := seen[r.MachineNS]; !ok {
			seen[r.MachineNS] = struct{}{}
			nsList = append(nsList, r.MachineNS)
		}
	}

	var machines []model.Machine
	if err := s.db.WithContext(ctx).Where("ns IN ?", nsList).Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch joined machines: %w", err)
	}

	lists := make(map[string][]model.Machine, len(machines))
	for _, m := range machines {
		lists[m.NS] = append(lists[m.NS], m)
	}
	return lists, nil
}

func (s *gormStore) fetchClientNames(ctx context.Context, repairs []model.Repair) (map[string]string, error) {
	seen := make(map[string]struct{}, len(repairs))
	idList := make([]string, 0, len(repairs))
	for _, r := range repairs {
		if _, ok := seen[r.ClientRef]; !ok {
			seen[r.ClientRef] = struct{}{}
			idList = append(idList, r.ClientRef)
		}
	}

	var clients []model.Client
	if err := s.db.WithContext(ctx).Where("client_id IN ?", idList).Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch joined clients: %w", err)
	}

	names := make(map[string]string, len(clients))
	for _, c := range clients {
		names[c.ClientID] = c.Name
	}
	return names, nil
}
