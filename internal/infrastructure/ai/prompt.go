package ai

import (
	"bytes"
	"strings"
	"text/template"
)

const (
	roleSystem = "system"
	roleUser   = "user"
)

// PromptMessage is one chat message sent to a provider.
type PromptMessage struct {
	Role    string
	Content string
}

type toolExample struct {
	Query   string
	Command string
}

type toolGuide struct {
	Title    string
	Examples []toolExample
}

// Curated few-shot examples keyed by tool name.
var toolGuides = map[string]toolGuide{
	"git": {
		Title: "Git",
		Examples: []toolExample{
			{"check status", "git status"},
			{"add all files", "git add ."},
			{"commit with message", "git commit -m"},
			{"undo last commit", "git reset --soft HEAD~1"},
			{"delete untracked files", "git clean -fd"},
		},
	},
	"az": azureGuide,
	"azure": azureGuide,
	"docker": {
		Title: "Docker",
		Examples: []toolExample{
			{"list containers", "docker ps"},
			{"list images", "docker images"},
			{"stop container", "docker stop"},
		},
	},
	"kubectl": {
		Title: "Kubernetes kubectl",
		Examples: []toolExample{
			{"list pods", "kubectl get pods"},
			{"describe pod", "kubectl describe pod"},
			{"get services", "kubectl get services"},
		},
	},
}

var azureGuide = toolGuide{
	Title: "Azure CLI",
	Examples: []toolExample{
		{"list subscriptions", "az account list --output table"},
		{"show current subscription", "az account show"},
		{"list resource groups", "az group list --output table"},
		{"list storage accounts", "az storage account list --output table"},
	},
}

const systemPrompt = `You are a CLI command generator. Convert natural language requests to precise CLI commands.
IMPORTANT: Respond with ONLY the command, no explanations or additional text.`

var userPromptTemplate = template.Must(template.New("prompt").Parse(
	`{{with .Guide}}Tool: {{.Title}}
Examples:
{{range .Examples}}'{{.Query}}' → {{.Command}}
{{end}}{{end}}{{if .Context}}Context: {{.Context}}
{{end}}
Request: {{.Query}}
Command:
`))

type promptData struct {
	Guide   *toolGuide
	Context string
	Query   string
}

// BuildMessages renders the system instructions and the user request.
func BuildMessages(tool, query, contextText string) []PromptMessage {
	data := promptData{Context: strings.TrimSpace(contextText), Query: query}
	if guide, ok := toolGuides[strings.ToLower(strings.TrimSpace(tool))]; ok {
		data.Guide = &guide
	}
	var buf bytes.Buffer
	// The template is static and only reads string fields.
	_ = userPromptTemplate.Execute(&buf, data)
	return []PromptMessage{
		{Role: roleSystem, Content: systemPrompt},
		{Role: roleUser, Content: buf.String()},
	}
}

// BuildPrompt renders the full single-string prompt used by completion APIs.
func BuildPrompt(tool, query, contextText string) string {
	return flatten(BuildMessages(tool, query, contextText))
}

func flatten(messages []PromptMessage) string {
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(msg.Content)
	}
	return b.String()
}
