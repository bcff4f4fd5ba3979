// internal/selector/doc.go

/*
Package selector parses the data references used inside workflow
definitions.

Three forms exist:

	$inputs.<name>          a declared workflow input
	$steps.<name>.<field>   one output of a step
	$steps.<name>.*         every output of a step, as a mapping

Any string value starting with "$inputs." or "$steps." is treated as a
selector; other strings are literals.
*/
package selector
