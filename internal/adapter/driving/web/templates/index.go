package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/quantumvault/internal/adapter/driving/web/viewmodel"
)

// Index renders the add/retrieve forms and the service list.
func Index(page vm.IndexViewModel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		esc := templ.EscapeString[string]

		b.WriteString(`<header><h1>Quantum Vault</h1>`)
		b.WriteString(`<div class="notice">`)
		// NoticeHTML is already sanitized by bluemonday.
		b.WriteString(page.NoticeHTML)
		b.WriteString(`</div></header><main>`)

		if page.Flash != nil {
			b.WriteString(`<p class="flash-` + esc(string(page.Flash.Kind)) + `" role="status">` + esc(page.Flash.Message) + `</p>`)
		}

		csrf := `<input type="hidden" name="csrf_token" value="` + esc(page.CSRFToken) + `">`

		b.WriteString(`<section><h2>Add a password</h2><form method="post" action="/web/add">`)
		b.WriteString(csrf)
		b.WriteString(`<input name="service" placeholder="Service" required>`)
		b.WriteString(`<input name="username" placeholder="Username" required autocomplete="off">`)
		b.WriteString(`<input name="password" type="password" placeholder="Password" required autocomplete="new-password">`)
		b.WriteString(`<button type="submit">Save</button></form></section>`)

		b.WriteString(`<section><h2>Retrieve a password</h2><form method="post" action="/web/retrieve">`)
		b.WriteString(csrf)
		b.WriteString(`<input name="service" placeholder="Service" required>`)
		b.WriteString(`<button type="submit">Retrieve</button></form>`)
		if r := page.Retrieved; r != nil {
			b.WriteString(`<dl class="retrieved"><dt>Service</dt><dd>` + esc(r.Service) + `</dd>`)
			b.WriteString(`<dt>Username</dt><dd>` + esc(r.Username) + `</dd>`)
			b.WriteString(`<dt>Password</dt><dd><code>` + esc(r.Password) + `</code></dd></dl>`)
		}
		b.WriteString(`</section>`)

		b.WriteString(`<section><h2>Stored services</h2>`)
		if len(page.Services) == 0 {
			b.WriteString(`<p>No passwords stored yet.</p>`)
		} else {
			b.WriteString(`<ul class="services">`)
			for _, s := range page.Services {
				b.WriteString(`<li>` + esc(s) + `</li>`)
			}
			b.WriteString(`</ul>`)
		}
		b.WriteString(`</section></main>`)

		b.WriteString(`<footer>Quantum backend: ` + esc(page.QuantumBackend))
		if page.Fingerprint != "" {
			b.WriteString(` · last Bell measurement: <code>` + esc(page.Fingerprint) + `</code>`)
		}
		b.WriteString(`</footer>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}
