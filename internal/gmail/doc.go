// Package gmail reads the most recent inbox messages of a Gmail account.
//
// The client authenticates with the per-account OAuth2 credentials from the
// google package and implements mailbox.Mailbox. Each message is fetched in
// full format and reduced to its subject, sender, date, snippet and a short
// body preview taken from the first text part.
//
// Example usage:
//
//	client, err := gmail.NewClient(ctx, creds, "me", logger)
//	if err != nil {
//	    return err
//	}
//	emails, err := client.FetchRecent(ctx, 5)
package gmail
