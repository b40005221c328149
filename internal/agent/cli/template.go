package cli

const productTemplate = `
=== Product Details ===

Name:     {{.Name}}
ID:       {{.ID}}
Price:    {{.PriceCents}} cents
{{- if .CategoryID }}
Category: {{.CategoryID}}
{{- end}}
{{- if .Description }}
Notes:    {{.Description}}
{{- end}}
Active:   {{.Active}}
Revision: {{.Rev}}
Origin:   {{.UpdatedBy}}
Updated:  {{.UpdatedAt.Format "2006-01-02 15:04:05 MST"}}
{{- if .DeletedAt }}
Deleted:  {{.DeletedAt.Format "2006-01-02 15:04:05 MST"}}
{{- end}}
`

const categoryTemplate = `
=== Category Details ===

Name:     {{.Name}}
ID:       {{.ID}}
{{- if .ParentID }}
Parent:   {{.ParentID}}
{{- end}}
{{- if .Description }}
Notes:    {{.Description}}
{{- end}}
Active:   {{.Active}}
Revision: {{.Rev}}
Origin:   {{.UpdatedBy}}
Updated:  {{.UpdatedAt.Format "2006-01-02 15:04:05 MST"}}
{{- if .DeletedAt }}
Deleted:  {{.DeletedAt.Format "2006-01-02 15:04:05 MST"}}
{{- end}}
`

const conflictTemplate = `
=== Conflict: {{.Kind}}/{{.ID}} ===

Reason:   {{.Reason}}
Detected: {{.DetectedAt.Format "2006-01-02 15:04:05 MST"}}

Local version (rev {{.Local.Rev}}):
  Name:    {{.Local.Name}}
  Updated: {{.Local.UpdatedAt.Format "2006-01-02 15:04:05 MST"}}

Cloud version (rev {{.Remote.Rev}}):
  Name:    {{.Remote.Name}}
  Updated: {{.Remote.UpdatedAt.Format "2006-01-02 15:04:05 MST"}}
`
