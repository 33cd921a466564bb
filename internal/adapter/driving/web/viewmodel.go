package web

import (
	"sort"

	vm "github.com/ericfisherdev/quantumvault/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/quantumvault/internal/application"
)

// noticeMarkdown explains the decorative quantum step on the index page.
const noticeMarkdown = `Passwords are sealed with **AES-256-GCM** under a single process-wide key.

Each save also runs a two-qubit *Bell circuit* (` + "`H(0) · CNOT(0,1)`" + `) on a simulator.
The measurement is shown below for fun; it is **not** used as key material.`

// toRetrievedViewModel converts a decrypted credential for display.
func toRetrievedViewModel(cred *application.RetrievedCredential) *vm.RetrievedViewModel {
	if cred == nil {
		return nil
	}
	return &vm.RetrievedViewModel{
		Service:  cred.Service,
		Username: cred.Username,
		Password: cred.Password,
	}
}

// sortedServices returns a sorted copy so the page is stable between loads.
func sortedServices(services []string) []string {
	out := make([]string, len(services))
	copy(out, services)
	sort.Strings(out)
	return out
}
