// Package scan extracts configuration-variable names from flattened source
// text by matching a runtime's literal read idiom, such as process.env.NAME
// or os.environ["NAME"].
//
// Scanning is purely textual. Comments and string literals are not
// recognized, and computed keys are ignored.
package scan
