// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// FlashKind selects the styling of a flash message.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot status message shown above the forms.
type Flash struct {
	Kind    FlashKind
	Message string
}

// RetrievedViewModel holds a decrypted credential for display.
type RetrievedViewModel struct {
	Service  string
	Username string
	Password string
}

// IndexViewModel holds everything the index page renders.
type IndexViewModel struct {
	CSRFToken string
	Services  []string
	Flash     *Flash
	Retrieved *RetrievedViewModel
	// NoticeHTML is sanitized HTML rendered from the markdown notice.
	NoticeHTML     string
	QuantumBackend string
	Fingerprint    string
}
