package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Result is the validation verdict for one layer within one operation.
//
// Results are opaque tags. The only ordering defined between them is the
// severity used for category aggregation (see Severity).
type Result string

const (
	ResultError            Result = "ERROR"
	ResultFail             Result = "FAIL"
	ResultNotEvaluated     Result = "NOT_EVALUATED"
	ResultPass             Result = "PASS"
	ResultPassWithWarnings Result = "PASS_WITH_WARNINGS"
)

var ErrInvalidResult = errors.New("invalid result")

var allResults = []Result{
	ResultError,
	ResultFail,
	ResultNotEvaluated,
	ResultPass,
	ResultPassWithWarnings,
}

// AllResults returns every Result kind in a stable order.
func AllResults() []Result {
	out := make([]Result, len(allResults))
	copy(out, allResults)
	return out
}

func (r Result) Valid() bool {
	switch r {
	case ResultError, ResultFail, ResultNotEvaluated, ResultPass, ResultPassWithWarnings:
		return true
	default:
		return false
	}
}

func (r Result) String() string {
	return string(r)
}

// Severity ranks results for category aggregation:
// ERROR > FAIL > PASS_WITH_WARNINGS > NOT_EVALUATED > PASS.
// Invalid results rank below PASS.
func (r Result) Severity() int {
	switch r {
	case ResultError:
		return 4
	case ResultFail:
		return 3
	case ResultPassWithWarnings:
		return 2
	case ResultNotEvaluated:
		return 1
	case ResultPass:
		return 0
	default:
		return -1
	}
}

// Worst returns the more severe of a and b.
func Worst(a, b Result) Result {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

// ParseResult parses a result code such as "PASS_WITH_WARNINGS".
func ParseResult(raw string) (Result, error) {
	r := Result(strings.ToUpper(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidResult, raw)
	}
	return r, nil
}

func (r *Result) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseResult(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
