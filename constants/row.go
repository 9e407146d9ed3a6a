package constants

// RowColumn is one column of the output row template. A nil Default means the
// cell starts out null.
type RowColumn struct {
	Name    string
	Default *float64
}

func num(v float64) *float64 { return &v }

// DefaultRowFormat is the column layout of one exported result row.
var DefaultRowFormat = []RowColumn{
	{Name: "Date"},
	{Name: "Intervention"},
	{Name: "AST"}, {Name: "AST_RangeLow", Default: num(8)}, {Name: "AST_RangeHigh", Default: num(33)},
	{Name: "ALT"}, {Name: "ALT_RangeLow", Default: num(4)}, {Name: "ALT_RangeHigh", Default: num(36)},
	{Name: "GLOBULIN"}, {Name: "GLOBULIN_RangeLow", Default: num(1.9)}, {Name: "GLOBULIN_RangeHigh", Default: num(4.1)},
	{Name: "BUN"}, {Name: "BUN_RangeLow", Default: num(6)}, {Name: "BUN_RangeHigh", Default: num(20)},
	{Name: "FASTING_GLUCOSE"}, {Name: "FASTING_GLUCOSE_RangeLow", Default: num(70)}, {Name: "FASTING_GLUCOSE_RangeHigh", Default: num(99)},
	{Name: "A1C"}, {Name: "A1C_RangeLow", Default: num(0)}, {Name: "A1C_RangeHigh", Default: num(5.5)},
	{Name: "RBC"}, {Name: "RBC_RangeLow", Default: num(4.5)}, {Name: "RBC_RangeHigh", Default: num(5.9)},
	{Name: "HGB"}, {Name: "HGB_RangeLow", Default: num(13.5)}, {Name: "HGB_RangeHigh", Default: num(17.5)},
	{Name: "HCT"}, {Name: "HCT_RangeLow", Default: num(41)}, {Name: "HCT_RangeHigh", Default: num(53)},
	{Name: "WBC"}, {Name: "WBC_RangeLow", Default: num(4)}, {Name: "WBC_RangeHigh", Default: num(11)},
	{Name: "PLATELETS"}, {Name: "PLATELETS_RangeLow", Default: num(150)}, {Name: "PLATELETS_RangeHigh", Default: num(400)},
	{Name: "SODIUM"}, {Name: "SODIUM_RangeLow", Default: num(135)}, {Name: "SODIUM_RangeHigh", Default: num(145)},
	{Name: "POTASSIUM"}, {Name: "POTASSIUM_RangeLow", Default: num(3.4)}, {Name: "POTASSIUM_RangeHigh", Default: num(5)},
	{Name: "CHLORIDE"}, {Name: "CHLORIDE_RangeLow", Default: num(98)}, {Name: "CHLORIDE_RangeHigh", Default: num(108)},
	{Name: "CALCIUM"}, {Name: "CALCIUM_RangeLow", Default: num(8.5)}, {Name: "CALCIUM_RangeHigh", Default: num(10.5)},
	{Name: "CO2"}, {Name: "CO2_RangeLow", Default: num(23)}, {Name: "CO2_RangeHigh", Default: num(32)},
	{Name: "IGF1"}, {Name: "IGF1_RangeLow", Default: num(120)}, {Name: "IGF1_RangeHigh", Default: num(160)},
	{Name: "FASTING_INSULIN"}, {Name: "FASTING_INSULIN_RangeLow", Default: num(2)}, {Name: "FASTING_INSULIN_RangeHigh", Default: num(6)},
	{Name: "BETA_HYDROXYBUTYRATE"}, {Name: "BETA_HYDROXYBUTYRATE_RangeLow", Default: num(0)}, {Name: "BETA_HYDROXYBUTYRATE_RangeHigh", Default: num(7)},
	{Name: "B12"}, {Name: "B12_RangeLow", Default: num(500)}, {Name: "B12_RangeHigh", Default: num(1300)},
	{Name: "MAGNESIUM"}, {Name: "MAGNESIUM_RangeLow", Default: num(1.7)}, {Name: "MAGNESIUM_RangeHigh", Default: num(2.4)},
	{Name: "CRP"}, {Name: "CRP_RangeLow", Default: num(1)}, {Name: "CRP_RangeHigh", Default: num(3)},
	{Name: "IRON"},
	{Name: "IRON_MaleRangeLow", Default: num(50)}, {Name: "IRON_MaleRangeHigh", Default: num(150)},
	{Name: "IRON_FemaleRangeLow", Default: num(35)}, {Name: "IRON_FemaleRangeHigh", Default: num(145)},
	{Name: "CHOLESTEROL"}, {Name: "CHOLESTEROL_RangeLow", Default: num(0)}, {Name: "CHOLESTEROL_RangeHigh", Default: num(200)},
	{Name: "HOMOCYSTEINE"}, {Name: "HOMOCYSTEINE_RangeLow", Default: num(5)}, {Name: "HOMOCYSTEINE_RangeHigh", Default: num(15)},
	{Name: "Vitamin_D"}, {Name: "Vitamin_D_RangeLow", Default: num(40)}, {Name: "Vitamin_D_RangeHigh", Default: num(90)},
}
