// Package prompt turns an email into the text block sent to the language
// model and holds the fixed instruction sets for the two generation tasks:
// summarizing an email and deciding its next step.
package prompt
