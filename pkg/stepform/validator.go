package stepform

import "context"

// Validator checks one step's input against the schema bound to that step.
//
// On success it returns the validated data (engines may drop keys the schema
// does not declare). A failed check returns a *ValidationFailure; any other
// error is an engine failure. The controller never inspects messages, it only
// gates transitions on success or failure.
type Validator interface {
	Check(ctx context.Context, schema SchemaRef, data FormData) (FormData, error)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, schema SchemaRef, data FormData) (FormData, error)

// Check calls f.
func (f ValidatorFunc) Check(ctx context.Context, schema SchemaRef, data FormData) (FormData, error) {
	return f(ctx, schema, data)
}

// AcceptAll passes every input through unchanged.
var AcceptAll Validator = ValidatorFunc(func(ctx context.Context, _ SchemaRef, data FormData) (FormData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return data, nil
})
