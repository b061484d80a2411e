// Package imapmail reads recent inbox messages over IMAP.
//
// It is the mailbox.Mailbox implementation for accounts whose provider is not
// Gmail. Envelopes and body structures of the newest messages are fetched
// first; the first text/plain or text/html part of each message is then
// fetched and decoded to build the body preview. The mailbox is always
// selected read-only so messages keep their unseen flag.
package imapmail
