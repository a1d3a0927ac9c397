// Package errors provides structured, coded errors for yui.
//
// Every error produced by the tree builder, the engine, the theme loader,
// the preference store and the configuration loader carries a code from
// the registry below. The code decides how the error is handled:
//
//   - parse errors (E001-E009) are returned to the immediate caller, which
//     falls back to a plain-text preview of the document
//   - reconciliation errors (E010-E029) never leave the engine; they are
//     logged and turned into render status codes or skipped patches
//   - infrastructure errors (E030 and up) are returned normally
//
// # Usage
//
//	err := errors.New(errors.CodeParse).
//	    WithSource("layout.json", data, offset).
//	    WithSuggestion("Check for a trailing comma")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E001: Invalid JSON document
//	//
//	//   layout.json:3:18
//	//
//	//      2 │   "type": "View",
//	//   →  3 │   "children": [,]
//	//        │                ^
//	//
//	//   Hint: Check for a trailing comma
package errors
