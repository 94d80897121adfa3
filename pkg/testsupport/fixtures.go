// Package testsupport holds fixtures shared by package tests: the bundled
// checkout definition, a valid answer for each of its steps and a scripted
// validator.
package testsupport

import (
	"context"
	"sync"
	"testing"

	"github.com/goliatone/go-formwizard/pkg/stepform"
	"github.com/goliatone/go-formwizard/pkg/steps"
)

// Checkout loads the bundled checkout definition.
func Checkout(t testing.TB) *steps.Definition {
	t.Helper()

	def, err := steps.Checkout()
	if err != nil {
		t.Fatalf("load checkout: %v", err)
	}
	return def
}

// CheckoutWizard builds a wizard over the checkout table.
func CheckoutWizard(t testing.TB, validator stepform.Validator, options ...stepform.Option) *stepform.Wizard {
	t.Helper()

	w, err := stepform.New(Checkout(t).Table(), validator, options...)
	if err != nil {
		t.Fatalf("new wizard: %v", err)
	}
	return w
}

// CheckoutAnswers returns valid data for the personal, professional and
// billing steps, in order. Each call returns fresh maps.
func CheckoutAnswers() []stepform.FormData {
	return []stepform.FormData{
		{"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com", "phone": "01234567890"},
		{"company": "Engines Ltd", "position": "Analyst", "experience": "3-5", "industry": "Computing"},
		{"cardNumber": "4111111111111111", "cardHolder": "Ada Lovelace", "expiryDate": "1226", "cvv": "123"},
	}
}

// Result is one scripted validator response.
type Result struct {
	Data stepform.FormData
	Err  error
}

// ScriptedValidator replays results in order and records the schema refs it
// was asked to check. Once the script runs out it accepts input unchanged.
type ScriptedValidator struct {
	mu      sync.Mutex
	results []Result
	calls   []stepform.SchemaRef
}

var _ stepform.Validator = (*ScriptedValidator)(nil)

// NewScriptedValidator queues results.
func NewScriptedValidator(results ...Result) *ScriptedValidator {
	return &ScriptedValidator{results: results}
}

// Check implements stepform.Validator.
func (v *ScriptedValidator) Check(ctx context.Context, schema stepform.SchemaRef, data stepform.FormData) (stepform.FormData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, schema)
	if len(v.results) == 0 {
		return data.Clone(), nil
	}
	next := v.results[0]
	v.results = v.results[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	if next.Data == nil {
		return data.Clone(), nil
	}
	return next.Data.Clone(), nil
}

// Calls lists the schema refs checked so far.
func (v *ScriptedValidator) Calls() []stepform.SchemaRef {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]stepform.SchemaRef(nil), v.calls...)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
