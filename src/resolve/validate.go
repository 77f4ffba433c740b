package resolve

import (
	"lcc/src/ir"
	"lcc/src/util"
)

// Validate implements §4.5: the final pass that runs after type resolution and before lowering. The current
// core enforces exactly one rule, per the spec: a top-level function named main must exist.
func Validate(prog *ir.Node) error {
	for _, fn := range prog.Children {
		if fn.Data.(string) == "main" {
			return nil
		}
	}
	return util.NewDiag(util.ValidationError, "program has no top-level function named \"main\"")
}
