// Package errors provides structured, coded errors for the reflow command
// line and configuration files.
//
// Each error has a code (e.g. "E101") that maps to a short message, a longer
// explanation and a category. Errors found in a file carry a Location, and
// Format prints the surrounding lines:
//
//	err := errors.New("E101").
//	    WithLocation("reflow.yaml", 4, 3).
//	    WithSuggestion("Durations look like 30s or 5m")
//
//	fmt.Println(err.Format())
//	// ERROR E101: Invalid configuration value
//	//
//	//   reflow.yaml:4:3
//	//
//	//        3 │ session:
//	//   →    4 │   heartbeat: often
//	//          │   ^
//	//        5 │   idle: 5m
//	//
//	//   Hint: Durations look like 30s or 5m
package errors
