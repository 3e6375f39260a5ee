package seed

import appModels "github.com/yigit/internhub/internal/app/models"

const attestationTemplate = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Internship certificate</title></head>
<body>
<h1>Internship certificate</h1>
<p>{{.CompanyName}}{{if .CompanyAddress}}, {{.CompanyAddress}}{{end}}</p>
<p>We certify that <strong>{{.InternName}}</strong> completed an internship with us
as {{.Position}}{{if .Department}} in the {{.Department}} department{{end}}
from {{.StartDate}} to {{.EndDate}}{{if .TutorName}}, under the supervision of {{.TutorName}}{{end}}.</p>
<p>This certificate is issued for whatever purpose it may serve.</p>
<p>Issued on {{.Today}}</p>
<p>{{.Signatory}}</p>
</body>
</html>
`

const conventionTemplate = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Internship agreement</title></head>
<body>
<h1>Internship agreement</h1>
<h2>Between</h2>
<p>{{.CompanyName}}{{if .CompanyAddress}}, {{.CompanyAddress}}{{end}}, represented by {{.Signatory}}</p>
<h2>And</h2>
<p>{{.InternName}} ({{.InternEmail}})</p>
<h2>Terms</h2>
<ul>
<li>Position: {{.Position}}</li>
{{if .Department}}<li>Department: {{.Department}}</li>{{end}}
<li>Host company: {{.Company}}</li>
<li>Period: {{.StartDate}} to {{.EndDate}}</li>
{{if .TutorName}}<li>Tutor: {{.TutorName}}</li>{{end}}
</ul>
<p>Done on {{.Today}}</p>
<table><tr><td>For the company</td><td>The intern</td></tr></table>
</body>
</html>
`

// DefaultTemplates returns the templates created on first start
func DefaultTemplates() []*appModels.DocumentTemplate {
	return []*appModels.DocumentTemplate{
		{Name: "Default internship certificate", Kind: appModels.TemplateKindAttestation, Content: attestationTemplate},
		{Name: "Default internship agreement", Kind: appModels.TemplateKindConvention, Content: conventionTemplate},
	}
}
