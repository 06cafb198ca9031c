// Package harness runs a library test suite: it links a suite module against
// the primitive library, invokes each zero-argument test export and compares
// the word it returns with the expected one.
package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/chazu/schwasm/asm"
	"github.com/chazu/schwasm/host"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("schwasm.harness")

// Case is one test export and the word it must return.
type Case struct {
	Func string
	Want int32
}

// Result is the outcome of one Case.
type Result struct {
	Case
	Got int32
	Err error // set when the call itself failed
}

// Passed reports whether the call succeeded and returned the wanted word.
func (r Result) Passed() bool {
	return r.Err == nil && r.Got == r.Want
}

func (r Result) String() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("FAIL %s: %v", r.Func, r.Err)
	case r.Got != r.Want:
		return fmt.Sprintf("FAIL %s: got %d, want %d", r.Func, r.Got, r.Want)
	}
	return fmt.Sprintf("ok   %s = %d", r.Func, r.Got)
}

// Report collects the results of one suite run.
type Report struct {
	Suite   string
	Digest  [32]byte
	Results []Result
}

// Passed counts passing results.
func (r *Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed() {
			n++
		}
	}
	return n
}

// Failed counts failing results.
func (r *Report) Failed() int {
	return len(r.Results) - r.Passed()
}

// OK reports whether every case passed.
func (r *Report) OK() bool {
	return r.Failed() == 0
}

func (r *Report) String() string {
	var sb strings.Builder
	for _, res := range r.Results {
		sb.WriteString(res.String())
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "%d passed, %d failed\n", r.Passed(), r.Failed())
	return sb.String()
}

// BuiltinCases returns the expectations for asm.TestSuite.
func BuiltinCases() []Case {
	cases := make([]Case, len(asm.SuiteExpectations))
	for i, e := range asm.SuiteExpectations {
		cases[i] = Case{Func: e.Func, Want: e.Want}
	}
	return cases
}

// Run instantiates lib, publishes it as asm.Namespace, instantiates suite
// against it once, and invokes every case. A case that traps or has the
// wrong signature is recorded as failed and the remaining cases still run.
// Linking errors abort the run.
func Run(ctx context.Context, s *host.Session, lib, suite *host.Module, cases []Case) (*Report, error) {
	libInst, err := s.Instantiate(ctx, lib, nil)
	if err != nil {
		return nil, err
	}
	env := host.NewEnv()
	env.Publish(libInst, asm.Namespace)

	inst, err := s.Instantiate(ctx, suite, env)
	if err != nil {
		return nil, err
	}

	report := &Report{Suite: suite.Name, Digest: suite.Digest}
	for _, c := range cases {
		got, err := inst.Invoke(ctx, c.Func)
		res := Result{Case: c, Got: got, Err: err}
		if !res.Passed() {
			log.Warningf("%s", res)
		}
		report.Results = append(report.Results, res)
	}
	log.Infof("%s: %d passed, %d failed", suite.Name, report.Passed(), report.Failed())
	return report, nil
}
