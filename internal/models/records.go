// internal/models/records.go

package models

// PostRecord is one entry of the append-only public post log. Timestamp is
// the human-readable wall-clock string assigned when the post was appended;
// log order, not timestamp order, is the canonical ordering.
type PostRecord struct {
	Author    string
	Timestamp string
	Body      string
}

// MessageRecord is one direct message. Messages are persisted append-only to
// a log file keyed by the (Sender, Recipient) ordered pair.
type MessageRecord struct {
	Sender    string
	Recipient string
	Body      string
}
