package synth

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
)

// TargetRows is the number of synthetic rows requested from the model.
const TargetRows = 20

// DefaultCaption titles the output when the user gave no description.
const DefaultCaption = "Synthetic data generated"

//go:embed prompts/system_*.md
var systemPromptFS embed.FS

// SystemPrompt is one published revision of the system-role instructions.
type SystemPrompt struct {
	Version string
	Text    string
}

// Prompt is the two role-tagged blocks sent to the model.
type Prompt struct {
	Version string
	System  string
	User    string
}

// SystemPromptVersions lists the embedded revisions, oldest first.
func SystemPromptVersions() []string {
	entries, err := systemPromptFS.ReadDir("prompts")
	if err != nil {
		return nil
	}

	versions := make([]string, 0, len(entries))
	for _, e := range entries {
		name := strings.TrimSuffix(strings.TrimPrefix(e.Name(), "system_"), ".md")
		versions = append(versions, name)
	}
	sort.Strings(versions)

	return versions
}

// LoadSystemPrompt returns the named revision, or the latest when version is empty.
func LoadSystemPrompt(version string) (SystemPrompt, error) {
	if version == "" {
		versions := SystemPromptVersions()
		if len(versions) == 0 {
			return SystemPrompt{}, fmt.Errorf("no system prompts embedded")
		}
		version = versions[len(versions)-1]
	}

	data, err := systemPromptFS.ReadFile(path.Join("prompts", "system_"+version+".md"))
	if err != nil {
		return SystemPrompt{}, fmt.Errorf("unknown system prompt version %q (available: %s)", version, strings.Join(SystemPromptVersions(), ", "))
	}

	return SystemPrompt{Version: version, Text: strings.TrimSpace(string(data))}, nil
}

// BuildPrompt assembles the prompt for a resolved input. The user block
// lists the columns and sample rows only when the input has a schema.
func BuildPrompt(sys SystemPrompt, in *Input) Prompt {
	var user string
	if in.HasSchema() {
		user = buildSchemaPrompt(in.Schema, in.Description)
	} else {
		user = buildDescriptionPrompt(in.Description)
	}

	return Prompt{
		Version: sys.Version,
		System:  sys.Text,
		User:    user,
	}
}

func buildSchemaPrompt(schema *SchemaPreview, description string) string {
	if description == "" {
		description = "(not provided)"
	}

	return fmt.Sprintf(`CSV file with columns: %s
Sample content:
%s
Description: %s

Please generate exactly %d rows of synthetic data consistent with the structure and the context,
and return the output as comma-separated CSV, without any Markdown formatting or tables.
`, strings.Join(schema.Columns, ", "), schema.Sample, description, TargetRows)
}

func buildDescriptionPrompt(description string) string {
	return fmt.Sprintf(`User description: %s

Goal: Generate %d rows of synthetic data consistent with the description above.

Please return the output as comma-separated CSV, without Markdown formatting or tables.
`, description, TargetRows)
}
