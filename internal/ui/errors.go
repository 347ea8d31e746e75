package ui

import (
	"context"
	"errors"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
)

// Explain returns a short description of what went wrong and what the user
// can do about it, based on the error's kind.
func Explain(err error) (summary, hint string) {
	if err == nil {
		return "", ""
	}
	switch chain.KindOf(err) {
	case chain.KindNoProvider:
		return "Please install a wallet.", "Start a local node or open Frame, or set wallet_url with: w3dapp config set wallet_url <url>"
	case chain.KindUnauthorized:
		return "Wallet account not authorized.", "Run w3dapp connect and approve the request in your wallet."
	case chain.KindRejected:
		return "Request rejected in the wallet.", ""
	case chain.KindChain:
		return "The contract rejected the call: " + err.Error(), ""
	case chain.KindNetwork:
		if errors.Is(err, context.Canceled) {
			return "Cancelled.", ""
		}
		return "Could not reach the wallet: " + err.Error(), "Check that the wallet endpoint is running."
	}
	return err.Error(), ""
}

// FormatError renders err as an error line plus an optional hint line.
func FormatError(err error) string {
	summary, hint := Explain(err)
	if summary == "" {
		return ""
	}
	out := Err(summary)
	if hint != "" {
		out += "\n" + Hint(hint)
	}
	return out
}
