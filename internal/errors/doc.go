// Package errors provides coded, categorized error messages for querysync.
//
// Every public error type in querysync exposes a Code method returning one of
// the codes registered here. The command-line tool uses this package to turn
// those errors into readable terminal output:
//
//	err := errors.FromError(loc.Unsync(obj), "Q001")
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR Q001: Object was never synced
//	//
//	//   Unsync was called for an object that has no binding on this
//	//   location.
//	//
//	//   Hint: call Sync before Unsync, and Unsync each object only once
//
// # Error Codes
//
//   - Q001-Q019: synchronization errors (bindings, watchers)
//   - Q020-Q039: validation errors (field constraints, coercion)
//   - Q040-Q059: CLI errors (arguments)
package errors
