package embedding

import "fmt"

// maxPromptContentBytes caps how much of a unit is quoted to the generative
// model. Larger units are represented by their leading span, which is where
// declarations and signatures concentrate.
const maxPromptContentBytes = 8192

// describePrompt builds the content-derived prompt whose response is turned
// into the semantic vector. The response format is free text; only its
// embedding is used.
func describePrompt(language, content string) string {
	if len(content) > maxPromptContentBytes {
		content = content[:maxPromptContentBytes]
	}
	return fmt.Sprintf(
		"Describe concisely what the following %s content does, naming its main responsibilities and the data it operates on.\n\n%s",
		language, content)
}
