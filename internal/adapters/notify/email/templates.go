package email

import (
	"bytes"
	"fmt"
	htmltpl "html/template"
	texttpl "text/template"

	"pet-adoption/internal/ports/notify"
)

type template struct {
	subject *texttpl.Template
	body    *htmltpl.Template
}

// Las keys de data las arma el coordinator de adopciones:
// petName, requesterName, requesterEmail, ownerEmail, status, requestId.
var templates = map[notify.Kind]template{
	notify.KindRequestReceived: {
		subject: texttpl.Must(texttpl.New("s").Parse(`New adoption request for {{.petName}}`)),
		body: htmltpl.Must(htmltpl.New("b").Parse(`<p>Hi,</p>
<p><strong>{{.requesterName}}</strong> ({{.requesterEmail}}) wants to adopt <strong>{{.petName}}</strong>.</p>
<p>Review the request from your dashboard to accept or reject it.</p>`)),
	},
	notify.KindRequestAccepted: {
		subject: texttpl.Must(texttpl.New("s").Parse(`Your adoption request for {{.petName}} was accepted`)),
		body: htmltpl.Must(htmltpl.New("b").Parse(`<p>Hi {{.requesterName}},</p>
<p>Great news: the owner accepted your request to adopt <strong>{{.petName}}</strong>.</p>
<p>They will contact you at {{.requesterEmail}} to arrange the handover. Remember to upload the vaccination and neutering proofs.</p>`)),
	},
	notify.KindRequestRejected: {
		subject: texttpl.Must(texttpl.New("s").Parse(`Update on your adoption request for {{.petName}}`)),
		body: htmltpl.Must(htmltpl.New("b").Parse(`<p>Hi {{.requesterName}},</p>
<p>Unfortunately the owner declined your request to adopt <strong>{{.petName}}</strong>.</p>
<p>There are many other pets waiting for a home.</p>`)),
	},
}

func render(kind notify.Kind, data map[string]any) (subject, body string, err error) {
	t, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("email: unknown notification kind %q", kind)
	}

	var sb, bb bytes.Buffer
	if err := t.subject.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("email: render subject: %w", err)
	}
	if err := t.body.Execute(&bb, data); err != nil {
		return "", "", fmt.Errorf("email: render body: %w", err)
	}
	return sb.String(), bb.String(), nil
}
