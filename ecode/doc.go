// Package ecode defines the error taxonomy shared by the view client.
//
// Configuration problems, token problems and decode problems are sentinel
// errors matched with errors.Is:
//
//	if errors.Is(err, ecode.ErrInvalidToken) {
//	    // ask the caller for a fresh query
//	}
//
// Failed HTTP round trips surface as *RemoteError and are matched with
// errors.As:
//
//	var re *ecode.RemoteError
//	if errors.As(err, &re) && re.Code == "not_found" {
//	    ...
//	}
package ecode
