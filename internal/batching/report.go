package batching

import (
	"math/big"
)

// Outcome is the result of attempting one operation. Outcomes are appended
// in input order and never modified afterwards.
type Outcome struct {
	Sequence      int      `json:"sequence"` // 1-based position across the whole run
	Kind          Kind     `json:"kind"`
	Label         string   `json:"label,omitempty"`
	Success       bool     `json:"success"`
	TxHash        string   `json:"tx_hash,omitempty"`
	BlockNumber   uint64   `json:"block_number,omitempty"`
	GasUsed       uint64   `json:"gas_used,omitempty"`
	FailureReason string   `json:"failure_reason,omitempty"`
	Value         *big.Int `json:"value,omitempty"`
	Attempts      int      `json:"attempts"`
}

// Report summarizes a batch run.
//
// Succeeded + Failed == Total == len(Outcomes). Total equals the number of
// requested operations unless the run was interrupted, in which case only
// attempted operations are present and Requested holds the original size.
type Report struct {
	Total           int          `json:"total"`
	Succeeded       int          `json:"succeeded"`
	Failed          int          `json:"failed"`
	TotalGasUsed    uint64       `json:"total_gas_used"`
	ByKind          map[Kind]int `json:"by_kind"`
	TotalValueSpent *big.Int     `json:"total_value_spent"`
	Outcomes        []Outcome    `json:"outcomes"`
	Interrupted     bool         `json:"interrupted,omitempty"`
	Requested       int          `json:"requested"`
}

// ComputeReport folds outcomes into a Report. It has no side effects and
// returns equal reports for equal inputs. The outcome slice is copied.
func ComputeReport(outcomes []Outcome) Report {
	r := Report{
		ByKind:          make(map[Kind]int),
		TotalValueSpent: new(big.Int),
		Outcomes:        make([]Outcome, len(outcomes)),
		Requested:       len(outcomes),
	}
	copy(r.Outcomes, outcomes)

	for _, o := range outcomes {
		r.Total++
		if !o.Success {
			r.Failed++
			continue
		}
		r.Succeeded++
		r.TotalGasUsed += o.GasUsed
		r.ByKind[o.Kind]++
		if o.Value != nil {
			r.TotalValueSpent.Add(r.TotalValueSpent, o.Value)
		}
	}

	return r
}

// SuccessRate returns the fraction of successful outcomes in [0, 1].
func (r *Report) SuccessRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Succeeded) / float64(r.Total)
}
