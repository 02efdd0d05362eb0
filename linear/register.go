package linear

import (
	"fmt"

	"github.com/ecospace/sdmgo/core/model"
	"github.com/ecospace/sdmgo/pkg/errors"
)

func init() {
	model.Register(model.GLM, newFromArgs)
}

// newFromArgs builds a logistic trainer from free-form algorithm arguments.
func newFromArgs(args map[string]any) (model.Trainer, error) {
	var opts []LogisticOption
	for key, value := range args {
		switch key {
		case "maxiter":
			n, ok := asInt(value)
			if !ok {
				return nil, errors.NewValueError("glm args", fmt.Sprintf("maxiter: expected integer, got %T", value))
			}
			opts = append(opts, WithLogisticMaxIter(n))
		case "tol":
			f, ok := asFloat(value)
			if !ok {
				return nil, errors.NewValueError("glm args", fmt.Sprintf("tol: expected number, got %T", value))
			}
			opts = append(opts, WithLogisticTol(f))
		case "intercept":
			b, ok := value.(bool)
			if !ok {
				return nil, errors.NewValueError("glm args", fmt.Sprintf("intercept: expected bool, got %T", value))
			}
			opts = append(opts, WithLogisticIntercept(b))
		default:
			return nil, errors.NewValueError("glm args", fmt.Sprintf("unknown argument %q", key))
		}
	}
	return NewLogistic(opts...), nil
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		return int(x), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	}
	return 0, false
}
