// Package stepform implements the multi-step form controller.
//
// State is an explicit value with pure transition methods (Advance, Retreat,
// Merge, Submit). Controller owns one State together with the step table and
// the step→schema table, and exposes the raw operations without any gating.
// Wizard layers the navigation protocol on top: validate the current step
// through a Validator before moving forward, never validate going backward,
// submit from the last step, and treat Submitted as terminal until Reset.
//
//	def, _ := steps.Checkout()
//	engine, _ := validation.NewJSONSchema(def)
//	wiz, _ := stepform.New(def.Table(), engine)
//
//	outcome, err := wiz.Next(ctx, stepform.FormData{"firstName": "Ada", ...})
//	var failure *stepform.ValidationFailure
//	if errors.As(err, &failure) {
//		// show failure.Fields next to each input; state is unchanged
//	}
package stepform
