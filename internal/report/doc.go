// Package report compiles the digest for one mailbox run and renders it as a
// sequence of chat messages.
//
// Compilation asks the language model for one summary per regular email and
// one summary-plus-next-step per high-priority email, strictly one call at a
// time and in input order. The first failed call aborts the compilation.
//
// Rendering is a pure function of the compiled Report:
//
//	# PRIMARY Email Report 2024-12-31 08:30
//	1. (Daycare <news@sprouts.edu>) Pajama day on Friday. NEXT STEPS: Pack pajamas.
//	*No regular emails to report.*
//	### Grouped Emails
//	- (alerts@warhorn.net) - message count: 2
package report
