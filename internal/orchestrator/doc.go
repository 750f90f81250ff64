// Package orchestrator runs a startup plan in order.
//
// The orchestrator owns the sequencing guarantee: target i's outcome is
// settled before target i+1 is touched. It does not know how a single
// service is brought up; that is the job of a Starter, normally a
// *controller.Controller.
//
// # Failure policy
//
// Two policies decide what happens after a target fails:
//
//   - continue (default): every target is attempted regardless of earlier
//     failures
//   - abort: the first failure turns every remaining target into a skipped
//     outcome
//
// A cancelled context has the same effect as abort. Either way Run returns
// exactly one outcome per target, in plan order.
//
// # Usage Example
//
//	ctrl := controller.New(transport.NewSC(transport.ExecRunner{}), controller.Options{})
//	orch := orchestrator.New(ctrl, orchestrator.Config{OnFailure: orchestrator.FailureAbort})
//
//	result := orch.Run(ctx, plan)
//	if err := result.Err(); err != nil {
//	    return err
//	}
package orchestrator
