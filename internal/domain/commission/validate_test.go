package commission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsWellFormedStructures(t *testing.T) {
	for _, s := range []Structure{
		*flatStructure("5"),
		{Name: "Ladder", BaseRate: d("0"), IsActive: true, Policy: Tiered{Tiers: standardTiers()}},
		{Name: "Target", BaseRate: d("4"), Policy: TargetBased{TargetAmount: d("10000")}},
		{Name: "Share", BaseRate: d("100"), Policy: ProfitSharing{}},
	} {
		t.Run(string(s.Type()), func(t *testing.T) {
			got := Validate(s)
			assert.True(t, got.Valid)
			assert.NotNil(t, got.Errors)
			assert.Empty(t, got.Errors)
			assert.NoError(t, got.Err())
		})
	}
}

func TestValidateReportsEveryDefect(t *testing.T) {
	got := Validate(Structure{Name: "Broken", BaseRate: d("150"), Policy: Tiered{}})

	assert.False(t, got.Valid)
	require.Len(t, got.Errors, 2)
	assert.Contains(t, got.Errors[0], "base rate")
	assert.Contains(t, got.Errors[1], "at least one tier")
	assert.Error(t, got.Err())
}

func TestValidateFieldRules(t *testing.T) {
	tests := []struct {
		name      string
		structure Structure
		contains  string
	}{
		{"blank name", Structure{Name: "  ", BaseRate: d("5"), Policy: FlatRate{}}, "name is required"},
		{"negative rate", Structure{Name: "x", BaseRate: d("-1"), Policy: FlatRate{}}, "base rate"},
		{"missing type", Structure{Name: "x", BaseRate: d("5")}, "commission type is required"},
		{"zero target", Structure{Name: "x", BaseRate: d("5"), Policy: TargetBased{}}, "target amount"},
		{"negative target", Structure{Name: "x", BaseRate: d("5"), Policy: TargetBased{TargetAmount: d("-10")}}, "target amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.structure)
			assert.False(t, got.Valid)
			require.Len(t, got.Errors, 1)
			assert.Contains(t, got.Errors[0], tt.contains)
		})
	}
}

func TestValidateRecordTypeErrors(t *testing.T) {
	unknown := ValidateRecord(StructureRecord{Name: "Mystery", Type: "lottery", BaseRate: d("150")})
	assert.False(t, unknown.Valid)
	require.Len(t, unknown.Errors, 2)
	assert.Contains(t, unknown.Errors[0], "base rate")
	assert.Contains(t, unknown.Errors[1], `unknown commission structure type: "lottery"`)
	assert.NotContains(t, unknown.Errors, "commission type is required")

	missing := ValidateRecord(StructureRecord{Name: "Untyped", BaseRate: d("5")})
	assert.False(t, missing.Valid)
	assert.Equal(t, []string{"commission type is required"}, missing.Errors)

	flat := ValidateRecord(StructureRecord{Name: "Counter", Type: TypeFlatRate, BaseRate: d("5")})
	assert.True(t, flat.Valid)
}

func TestValidateTiers(t *testing.T) {
	tests := []struct {
		name     string
		tiers    []Tier
		contains []string
	}{
		{
			name: "gap",
			tiers: []Tier{
				{MinAmount: d("0"), MaxAmount: d("1000"), Rate: d("5")},
				{MinAmount: d("1500"), MaxAmount: d("5000"), Rate: d("8")},
			},
			contains: []string{"tiers 1 and 2: gap between 1000 and 1500"},
		},
		{
			name: "overlap",
			tiers: []Tier{
				{MinAmount: d("0"), MaxAmount: d("1000"), Rate: d("5")},
				{MinAmount: d("800"), MaxAmount: d("5000"), Rate: d("8")},
			},
			contains: []string{"tiers 1 and 2: overlap between 800 and 1000"},
		},
		{
			name: "inverted band and bad rate",
			tiers: []Tier{
				{MinAmount: d("0"), MaxAmount: d("0"), Rate: d("101")},
			},
			contains: []string{"tier 1: maximum amount", "tier 1: rate"},
		},
		{
			name: "negative minimum",
			tiers: []Tier{
				{MinAmount: d("-5"), MaxAmount: d("100"), Rate: d("5")},
			},
			contains: []string{"tier 1: minimum amount"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(Structure{Name: "Ladder", BaseRate: d("0"), Policy: Tiered{Tiers: tt.tiers}})
			assert.False(t, got.Valid)
			require.Len(t, got.Errors, len(tt.contains))
			for i, want := range tt.contains {
				assert.Contains(t, got.Errors[i], want)
			}
		})
	}
}
