package models

// Label is the canonical entity-type vocabulary that both source adapters
// map into. Oracle-native labels and pattern names are translated to these
// values before candidates enter the pipeline.
type Label string

const (
	LabelPerson  Label = "PERSON"
	LabelOrg     Label = "ORG"
	LabelLoc     Label = "LOC"
	LabelDate    Label = "DATE"
	LabelMoney   Label = "MONEY"
	LabelEmail   Label = "EMAIL"
	LabelPhone   Label = "PHONE"
	LabelIBAN    Label = "IBAN"
	LabelSiren   Label = "SIREN"
	LabelSiret   Label = "SIRET"
	LabelAddress Label = "ADDRESS"
)

// SupportedLabels returns all canonical labels in a stable order.
func SupportedLabels() []Label {
	return []Label{
		LabelPerson,
		LabelOrg,
		LabelLoc,
		LabelDate,
		LabelMoney,
		LabelEmail,
		LabelPhone,
		LabelIBAN,
		LabelSiren,
		LabelSiret,
		LabelAddress,
	}
}

// IsFixedWidthID reports whether the label denotes a fixed-width structured
// identifier. These are exempt from the short-text scoring penalty.
func (l Label) IsFixedWidthID() bool {
	switch l {
	case LabelIBAN, LabelSiren, LabelSiret:
		return true
	}
	return false
}

// Source is the provenance tag of a candidate. It is fixed at creation and
// never mutated; the resolver and scorer both key off it.
type Source string

const (
	SourceModel   Source = "ner"
	SourcePattern Source = "regex"
	SourceManual  Source = "manual"
)

// Entity is both a raw candidate and a final result. Start and End are
// half-open byte offsets into the original text, so text[Start:End] is the
// unnormalized span. Context is advisory only and is omitted from API
// results.
type Entity struct {
	Text       string  `json:"text"`
	Label      Label   `json:"label"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
	Context    string  `json:"context,omitempty"`
}

// Length returns the span length in bytes.
func (e *Entity) Length() int {
	return e.End - e.Start
}
