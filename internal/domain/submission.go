package domain

import "encoding/json"

// Submission is the metadata record published for one identifier.
type Submission struct {
	ID           string
	DecisionDate string
	ProductCode  string
	DeviceName   string
	Applicant    string
}

// Outcome classifies the result of a predicate lookup.
type Outcome string

const (
	OutcomeResolved      Outcome = "resolved"
	OutcomeNoCandidate   Outcome = "no_candidate"
	OutcomeUnavailable   Outcome = "unavailable"
	OutcomeNotResolvable Outcome = "not_resolvable"
)

// Resolution is the outcome of looking up the predicate of one identifier.
// Err is set only for OutcomeUnavailable and is informational.
type Resolution struct {
	ID        string
	Predicate string
	Outcome   Outcome
	Err       error
}

// Resolved reports whether a predicate was found.
func (r Resolution) Resolved() bool {
	return r.Outcome == OutcomeResolved && r.Predicate != ""
}

// NodeInfo is the per-node payload of a lineage result. Matched marks entries
// backed by a metadata record; only those carry the metadata keys in JSON,
// empty values included.
type NodeInfo struct {
	DecisionDate string
	ProductCodes string
	DeviceName   string
	Applicant    string
	Generation   int
	Matched      bool
}

type nodeInfoJSON struct {
	DecisionDate *string `json:"DECISION_DATE,omitempty"`
	ProductCodes *string `json:"PRODUCT_CODES,omitempty"`
	DeviceName   *string `json:"DEVICE_TRADE_NAME,omitempty"`
	Applicant    *string `json:"APPLICANT,omitempty"`
	Generation   int     `json:"GENERATION"`
}

// MarshalJSON emits the metadata keys only for matched entries.
func (n NodeInfo) MarshalJSON() ([]byte, error) {
	out := nodeInfoJSON{Generation: n.Generation}
	if n.Matched {
		out.DecisionDate = &n.DecisionDate
		out.ProductCodes = &n.ProductCodes
		out.DeviceName = &n.DeviceName
		out.Applicant = &n.Applicant
	}
	return json.Marshal(out)
}

// UnmarshalJSON treats any metadata key as evidence of a matched record.
func (n *NodeInfo) UnmarshalJSON(data []byte) error {
	var in nodeInfoJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*n = NodeInfo{Generation: in.Generation}
	for _, f := range []struct {
		src *string
		dst *string
	}{
		{in.DecisionDate, &n.DecisionDate},
		{in.ProductCodes, &n.ProductCodes},
		{in.DeviceName, &n.DeviceName},
		{in.Applicant, &n.Applicant},
	} {
		if f.src != nil {
			*f.dst = *f.src
			n.Matched = true
		}
	}
	return nil
}

// Result is the document returned for a tree or branch request.
type Result struct {
	Tree Graph               `json:"tree"`
	Info map[string]NodeInfo `json:"info"`
}
