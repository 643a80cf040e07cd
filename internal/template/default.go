package template

// DefaultTemplate is the embedded review template.
// It uses {{variable}} placeholders for dynamic content injection.
const DefaultTemplate = `# {{title}}
{{mode}}{{record}}

{{fields}}
{{missing}}`
