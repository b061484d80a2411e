// Package signal delivers report lines over Signal Messenger via signal-cli.
//
// Messages go either to a group, looked up by name, or to a single recipient
// phone number. The client wraps the signal-cli command-line tool, which must
// be installed and registered for the sending account:
//
//  1. Install signal-cli: https://github.com/AsamK/signal-cli
//  2. Register the account:
//     signal-cli -u YOUR_PHONE_NUMBER register
//  3. Verify it with the SMS code:
//     signal-cli -u YOUR_PHONE_NUMBER verify CODE_RECEIVED
//
// Example usage:
//
//	client, err := signal.NewClient("+15551234567", signal.Target{Group: "Family"})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	if err := client.Check(ctx); err != nil {
//	    return err
//	}
//	err = client.Send(ctx, "# PRIMARY Email Report 2025-01-15 08:05")
package signal
