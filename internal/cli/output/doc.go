// Package output provides output formatting for tokengate-cli.
//
// Command results render in one of three formats selected by the
// --output flag: aligned FIELD/VALUE tables for humans (the default),
// or JSON and YAML for scripting. Table output flattens the single
// record a command returns; the CLI has no list views.
package output
