// Package mailbox defines the email record shared by the digest pipeline and
// the contract every mailbox backend (Gmail, IMAP) implements.
//
// Backends are responsible for applying the header defaults and for capping
// the body preview before handing emails to the rest of the program, so the
// grouping and summarization code never has to inspect raw messages.
package mailbox
