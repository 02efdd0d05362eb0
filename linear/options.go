package linear

// LogisticOption is a functional option for Logistic.
type LogisticOption func(*Logistic)

// WithLogisticMaxIter sets the IRLS iteration cap.
func WithLogisticMaxIter(maxIter int) LogisticOption {
	return func(l *Logistic) {
		l.maxIter = maxIter
	}
}

// WithLogisticTol sets the coefficient-change tolerance for stopping.
func WithLogisticTol(tol float64) LogisticOption {
	return func(l *Logistic) {
		l.tol = tol
	}
}

// WithLogisticIntercept sets whether an intercept column is fitted.
func WithLogisticIntercept(fit bool) LogisticOption {
	return func(l *Logistic) {
		l.fitIntercept = fit
	}
}
