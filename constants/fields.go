package constants

import (
	"strings"
)

// FieldSynonyms pairs a canonical lab field with the alternate spellings searched
// when the canonical name itself is not found on the page.
type FieldSynonyms struct {
	Field    string
	Synonyms []string
}

var labFields = []FieldSynonyms{
	{Field: "AST", Synonyms: []string{"ast", "aspartate aminotransferase", "aspartate transaminase", "sgot", "serum glutamic oxaloacetic transaminase", "asp aminotransferase"}},
	{Field: "ALT", Synonyms: []string{"alt", "alanine aminotransferase", "alanine transaminase", "sgpt", "serum glutamic pyruvic transaminase", "ala aminotransferase", "alat"}},
	{Field: "GLOBULIN", Synonyms: []string{"globulin", "serum globulin", "total globulin", "glob", "globulins"}},
	{Field: "BUN", Synonyms: []string{"bun", "blood urea nitrogen", "urea nitrogen", "urea", "blood urea"}},
	{Field: "FASTING_GLUCOSE", Synonyms: []string{"fasting glucose", "glucose fasting", "fbs", "fasting blood sugar", "glucose", "blood glucose", "serum glucose", "plasma glucose", "gluc", "glu", "fast glucose", "glucose fast"}},
	{Field: "A1C", Synonyms: []string{"a1c", "hba1c", "hemoglobin a1c", "glycated hemoglobin", "glycohemoglobin", "hgb a1c", "hb a1c", "a1c hemoglobin"}},
	{Field: "RBC", Synonyms: []string{"rbc", "red blood cells", "red blood cell count", "erythrocytes", "red cell count", "rbc count", "red cells"}},
	{Field: "HGB", Synonyms: []string{"hgb", "hemoglobin", "hb", "haemoglobin", "hemo"}},
	{Field: "HCT", Synonyms: []string{"hct", "hematocrit", "haematocrit", "packed cell volume", "pcv"}},
	{Field: "WBC", Synonyms: []string{"wbc", "white blood cells", "white blood cell count", "leukocytes", "white cell count", "wbc count", "white cells", "leucocytes"}},
	{Field: "PLATELETS", Synonyms: []string{"platelets", "platelet count", "plt", "thrombocytes", "plts"}},
	{Field: "SODIUM", Synonyms: []string{"sodium", "na", "serum sodium", "na+", "sod"}},
	{Field: "POTASSIUM", Synonyms: []string{"potassium", "k", "serum potassium", "k+", "pot"}},
	{Field: "CHLORIDE", Synonyms: []string{"chloride", "cl", "serum chloride", "cl-", "chlor"}},
	{Field: "CALCIUM", Synonyms: []string{"calcium", "ca", "serum calcium", "ca++", "total calcium", "ca2+"}},
	{Field: "CO2", Synonyms: []string{"co2", "carbon dioxide", "bicarbonate", "hco3", "total co2", "co2 total", "bicarb", "tco2"}},
	{Field: "IGF1", Synonyms: []string{"igf1", "igf-1", "insulin-like growth factor 1", "insulin like growth factor", "somatomedin c", "igf 1"}},
	{Field: "FASTING_INSULIN", Synonyms: []string{"fasting insulin", "insulin fasting", "insulin", "serum insulin", "plasma insulin", "fast insulin", "insulin fast"}},
	{Field: "BETA_HYDROXYBUTYRATE", Synonyms: []string{"beta hydroxybutyrate", "beta-hydroxybutyrate", "b-hydroxybutyrate", "bhb", "ketones", "serum ketones", "beta hydroxy butyrate"}},
	{Field: "B12", Synonyms: []string{"b12", "vitamin b12", "vitamin b-12", "cobalamin", "cyanocobalamin", "b 12", "vit b12", "folate b12"}},
	{Field: "Vitamin_D", Synonyms: []string{"vitamin d", "vitamin d3", "vitamin d 25-oh", "25-hydroxyvitamin d", "25 oh vitamin d", "calcidiol", "vit d", "vitamin d total", "25-oh-d3", "25(oh)d", "vitamin d 25 hydroxy"}},
	{Field: "MAGNESIUM", Synonyms: []string{"magnesium", "mg", "serum magnesium", "mg++", "mag"}},
	{Field: "IRON", Synonyms: []string{"iron", "fe", "serum iron", "iron serum", "total iron"}},
	{Field: "CRP", Synonyms: []string{"crp", "c-reactive protein", "c reactive protein", "c-rp", "high sensitivity crp", "hs-crp", "hs crp"}},
	{Field: "CHOLESTEROL", Synonyms: []string{"cholesterol", "total cholesterol", "chol", "tc", "serum cholesterol", "total chol"}},
	{Field: "HOMOCYSTEINE", Synonyms: []string{"homocysteine", "hcy", "homo-cysteine", "homocyst", "total homocysteine"}},
}

// LabFields returns a copy of the built-in field vocabulary in search order.
func LabFields() []FieldSynonyms {
	out := make([]FieldSynonyms, len(labFields))
	for i, f := range labFields {
		out[i] = FieldSynonyms{Field: f.Field, Synonyms: append([]string(nil), f.Synonyms...)}
	}
	return out
}

// FieldNames lists the canonical field names.
func FieldNames() []string {
	result := make([]string, len(labFields))
	for i, f := range labFields {
		result[i] = f.Field
	}
	return result
}

// Canonicalize maps a field label (any case, or one of its exact synonyms) to its canonical name.
func Canonicalize(input string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}
	for _, f := range labFields {
		if normalized == strings.ToLower(f.Field) {
			return f.Field, true
		}
	}
	for _, f := range labFields {
		for _, s := range f.Synonyms {
			if normalized == s {
				return f.Field, true
			}
		}
	}
	return "", false
}
