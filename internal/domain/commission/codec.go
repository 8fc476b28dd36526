package commission

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// StructureRecord is the flat wire form of a Structure.
type StructureRecord struct {
	Name         string           `json:"name"`
	Type         StructureType    `json:"type"`
	BaseRate     decimal.Decimal  `json:"baseRate"`
	IsActive     bool             `json:"isActive"`
	Tiers        []Tier           `json:"tiers,omitempty"`
	TargetAmount *decimal.Decimal `json:"targetAmount,omitempty"`
}

func (s Structure) Record() StructureRecord {
	rec := StructureRecord{
		Name:     s.Name,
		Type:     s.Type(),
		BaseRate: s.BaseRate,
		IsActive: s.IsActive,
	}
	switch p := s.Policy.(type) {
	case Tiered:
		rec.Tiers = append([]Tier(nil), p.Tiers...)
	case TargetBased:
		target := p.TargetAmount
		rec.TargetAmount = &target
	}
	return rec
}

// Structure builds the variant payload named by Type.
func (r StructureRecord) Structure() (Structure, error) {
	out := Structure{
		Name:     r.Name,
		BaseRate: r.BaseRate,
		IsActive: r.IsActive,
	}
	switch r.Type {
	case TypeFlatRate:
		out.Policy = FlatRate{}
	case TypeTiered:
		out.Policy = Tiered{Tiers: append([]Tier(nil), r.Tiers...)}
	case TypeTargetBased:
		target := decimal.Zero
		if r.TargetAmount != nil {
			target = *r.TargetAmount
		}
		out.Policy = TargetBased{TargetAmount: target}
	case TypeProfitSharing:
		out.Policy = ProfitSharing{}
	default:
		return Structure{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, r.Type)
	}
	return out, nil
}

func (s Structure) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Record())
}

func (s *Structure) UnmarshalJSON(data []byte) error {
	var rec StructureRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	parsed, err := rec.Structure()
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
