package utils

import "fmt"

// RecoverWithError turns a panic of the surrounding function into *err.
// A panic carrying an error stays reachable through errors.Is/As.
func RecoverWithError(err *error) {
	rv := recover()
	if rv == nil {
		return
	}
	if panicErr, ok := rv.(error); ok {
		*err = fmt.Errorf("got panic: %w", panicErr)
		return
	}
	*err = fmt.Errorf("got panic: %v", rv)
}
