package consistency

import "fmt"

// recorder captures failures so the checkers themselves can be tested.
type recorder struct {
	errors []string
	fatals []string
}

func (r *recorder) Helper() {}

func (r *recorder) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recorder) Fatalf(format string, args ...any) {
	r.fatals = append(r.fatals, fmt.Sprintf(format, args...))
	panic(errAbort)
}

var errAbort = fmt.Errorf("recorder: aborted")

// capture runs fn, swallowing the abort panic Fatalf raises.
func capture(r *recorder, fn func()) {
	defer func() {
		if rec := recover(); rec != nil && rec != errAbort {
			panic(rec)
		}
	}()
	fn()
}
