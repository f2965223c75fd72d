// Package output renders HTTP responses for a human.
//
// It decides between pretty-printed JSON, verbatim text, and
// save-to-file output, and maps the response status to a process exit
// code.
package output
